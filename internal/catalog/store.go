package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Store owns the in-memory snapshot of active products. The export file
// is read and normalized at most once per process; every caller observes
// the same fully loaded snapshot. A failed load settles the store on an
// empty snapshot for the rest of the process lifetime, so a damaged
// export degrades the storefront to zero products instead of crashing it.
type Store struct {
	path    string
	log     *zap.Logger
	metrics *Metrics

	once     sync.Once
	products []Product

	// open is swappable in tests to count reads and inject failures.
	open func(string) (io.ReadCloser, error)
}

func NewStore(path string, log *zap.Logger, m *Metrics) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		path:    path,
		log:     log,
		metrics: m,
		open:    func(p string) (io.ReadCloser, error) { return os.Open(p) },
	}
}

// Snapshot returns the loaded catalog, triggering the one-time load on
// first use. Concurrent first callers block on the same in-flight load;
// none of them can observe a partially populated snapshot. The returned
// slice is shared across requests and must not be mutated.
func (s *Store) Snapshot(ctx context.Context) []Product {
	_ = ctx // the load is file-local and not cancellable
	s.once.Do(s.load)
	return s.products
}

func (s *Store) load() {
	s.products = []Product{}

	f, err := s.open(s.path)
	if err != nil {
		s.log.Error("product export unavailable, serving empty catalog",
			zap.String("path", s.path), zap.Error(err))
		s.metrics.loadFailed()
		return
	}
	defer func() { _ = f.Close() }()

	rows, err := decodeExport(f)
	if err != nil {
		s.log.Error("product export undecodable, serving empty catalog",
			zap.String("path", s.path), zap.Error(err))
		s.metrics.loadFailed()
		return
	}

	kept := make([]Product, 0, len(rows))
	for _, row := range rows {
		if p := normalizeRow(row); p.active() {
			kept = append(kept, p)
		}
	}

	s.products = kept
	s.metrics.loaded(len(kept))
	s.log.Info("product catalog loaded",
		zap.String("path", s.path),
		zap.Int("rows", len(rows)),
		zap.Int("active", len(kept)))
}

// decodeExport maps every CSV record after the header row onto its column
// names, preserving file order. Records shorter than the header keep the
// missing cells absent.
func decodeExport(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}
