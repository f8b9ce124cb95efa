package catalog

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

// Request modes multiplexed onto the products endpoint, mirroring the
// query-string contract the storefront client was built against.
const (
	modeQuery       = "query"
	modeMeta        = "meta"
	modeSuggestions = "suggestions"
	modeLookup      = "lookup"
)

type Server struct {
	Store   *Store
	Log     *zap.Logger
	Metrics *Metrics
}

func (s *Server) Routes(limiter *kit.IPRateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	// Warming the cache here keeps the first storefront request cheap.
	// The store fails open, so readiness never depends on the export
	// being intact.
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		s.Store.Snapshot(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(gr chi.Router) {
		if limiter != nil {
			gr.Use(limiter.Middleware)
		}
		gr.Get("/api/products", s.list)
		gr.Get("/api/products/{handle}", s.get)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	snapshot := s.Store.Snapshot(r.Context())
	params := r.URL.Query()

	switch {
	case params.Get("meta") == "true":
		s.Metrics.request(modeMeta)
		kit.WriteJSON(w, http.StatusOK, VendorsAndTypes(snapshot))

	case params.Get("for") == "suggestions":
		s.Metrics.request(modeSuggestions)
		kit.WriteJSON(w, http.StatusOK, Suggestions(snapshot))

	default:
		s.Metrics.request(modeQuery)
		kit.WriteJSON(w, http.StatusOK, Query(snapshot, parseQuerySpec(params)))
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	s.Metrics.request(modeLookup)

	p, ok := FindByHandle(s.Store.Snapshot(r.Context()), handle)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"handle": handle})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// parseQuerySpec maps the documented query-string parameters onto a
// QuerySpec. Every value is defensively defaulted; an unparseable or
// non-positive page becomes page 1, unknown sort values fall back inside
// the query engine.
func parseQuerySpec(params url.Values) QuerySpec {
	spec := QuerySpec{
		FreeText:  params.Get("query"),
		Vendor:    params.Get("vendor"),
		Type:      params.Get("type"),
		SortBy:    params.Get("sortBy"),
		SortOrder: params.Get("sortOrder"),
		Page:      1,
	}
	if n, err := strconv.Atoi(params.Get("page")); err == nil && n > 0 {
		spec.Page = n
	}
	return spec
}
