package catalog_test

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StoreFront/internal/catalog"
)

var exportHeader = []string{
	"ID", "TITLE", "VENDOR", "STATUS", "PRODUCT_TYPE", "TAGS",
	"BODY_HTML", "HANDLE", "FEATURED_IMAGE", "SEO", "PRICE_RANGE_V2",
}

func row(id, title, vendor, ptype, tags, price string) []string {
	return []string{
		id, title, vendor, "ACTIVE", ptype, tags, "<p>" + title + "</p>",
		"h-" + id, "", "", `{"min_variant_price":{"amount":"` + price + `"}}`,
	}
}

func writeExport(t *testing.T, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.csv")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(exportHeader))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, f.Close())
	return path
}

func newStorefrontTS(t *testing.T, records [][]string) *httptest.Server {
	t.Helper()

	store := catalog.NewStore(writeExport(t, records), zap.NewNop(), nil)
	s := &catalog.Server{Store: store, Log: zap.NewNop()}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     nil,
		Service: "storefront",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

type queryResponse struct {
	Products     []map[string]any `json:"products"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

func titles(products []map[string]any) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p["TITLE"].(string))
	}
	return out
}

func twentyFiveProducts() [][]string {
	records := make([][]string, 0, 25)
	for i := 0; i < 25; i++ {
		records = append(records, row(
			fmt.Sprintf("%d", i),
			fmt.Sprintf("Item %03d", i),
			"Acme", "Mug", "", fmt.Sprintf("%d.00", i+1),
		))
	}
	return records
}

func TestProductsDefaultQuery(t *testing.T) {
	ts := newStorefrontTS(t, twentyFiveProducts())

	var got queryResponse
	status := getJSON(t, ts, "/api/products?sortBy=title&sortOrder=asc&page=1", &got)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, 25, got.TotalResults)
	require.Len(t, got.Products, 12)
	assert.Equal(t, "Item 000", got.Products[0]["TITLE"])
	assert.Equal(t, "Item 011", got.Products[11]["TITLE"])

	var last queryResponse
	getJSON(t, ts, "/api/products?page=3", &last)
	require.Len(t, last.Products, 1)
	assert.Equal(t, "Item 024", last.Products[0]["TITLE"])
}

func TestProductsWireShape(t *testing.T) {
	ts := newStorefrontTS(t, [][]string{
		{
			"1", "Raw", "Acme", "ACTIVE", "Mug", "red,blue", "<p>body</p>", "blue-mug",
			`{"url":"https://x/y.png","alt_text":"A","width":10,"height":10,"id":"img1"}`,
			`{"title":"Seo Title","description":"Seo description"}`,
			`{"min_variant_price":{"amount":"19.99"}}`,
		},
	})

	var got queryResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/products", &got))
	require.Len(t, got.Products, 1)

	p := got.Products[0]
	assert.Equal(t, "1", p["ID"])
	assert.Equal(t, "Seo Title", p["TITLE"])
	assert.Equal(t, "Acme", p["VENDOR"])
	assert.Equal(t, "Mug", p["PRODUCT_TYPE"])
	assert.Equal(t, "red,blue", p["TAGS"])
	assert.Equal(t, "blue-mug", p["HANDLE"])
	assert.Equal(t, "Seo description", p["PRODUCT_EXCERPT"])
	assert.Equal(t, 19.99, p["Variant Price"])

	img, ok := p["FEATURED_IMAGE"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://x/y.png", img["url"])
	assert.Equal(t, "A", img["alt_text"])
}

func TestProductsFilters(t *testing.T) {
	records := [][]string{
		row("1", "Red Mug", "Acme", "Mug", "", "5.00"),
		row("2", "Blue Mug", "acme", "Mug", "", "6.00"),
		row("3", "Lamp", "Bright", "Lighting", "", "7.00"),
		row("4", "Tagged Mug", "Bright", "Mug", "red,blue", "8.00"),
	}
	ts := newStorefrontTS(t, records)

	var byVendor queryResponse
	getJSON(t, ts, "/api/products?vendor=ACME&type=all&query=", &byVendor)
	assert.Equal(t, 2, byVendor.TotalResults)

	var byType queryResponse
	getJSON(t, ts, "/api/products?type=lighting", &byType)
	assert.Equal(t, []string{"Lamp"}, titles(byType.Products))

	// Free text reaches tags even when no other field matches.
	var byText queryResponse
	getJSON(t, ts, "/api/products?query=red", &byText)
	assert.ElementsMatch(t, []string{"Red Mug", "Tagged Mug"}, titles(byText.Products))
}

func TestProductsBadParamsDefault(t *testing.T) {
	ts := newStorefrontTS(t, twentyFiveProducts())

	var got queryResponse
	status := getJSON(t, ts, "/api/products?page=abc&sortBy=bogus&sortOrder=sideways", &got)

	// Unparseable parameters fall back to page 1, title ascending.
	require.Equal(t, http.StatusOK, status)
	require.Len(t, got.Products, 12)
	assert.Equal(t, "Item 000", got.Products[0]["TITLE"])
}

func TestProductsMetaMode(t *testing.T) {
	ts := newStorefrontTS(t, [][]string{
		row("1", "A", "Zeta", "Mug", "", "1.00"),
		row("2", "B", "Acme", "Lighting", "", "2.00"),
		row("3", "C", "Acme", "Mug", "", "3.00"),
	})

	var got struct {
		Vendors []string `json:"vendors"`
		Types   []string `json:"types"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/products?meta=true", &got))

	assert.Equal(t, []string{"Acme", "Zeta"}, got.Vendors)
	assert.Equal(t, []string{"Lighting", "Mug"}, got.Types)
}

func TestProductsSuggestionsMode(t *testing.T) {
	ts := newStorefrontTS(t, [][]string{
		row("1", "Zebra", "Zeta", "Mug", "", "1.00"),
		row("2", "Apple", "Acme", "Mug", "", "2.00"),
	})

	var got struct {
		Vendors  []string `json:"vendors"`
		Products []struct {
			ID    string `json:"ID"`
			Title string `json:"TITLE"`
		} `json:"products"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/products?for=suggestions", &got))

	assert.Equal(t, []string{"Acme", "Zeta"}, got.Vendors)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "1", got.Products[0].ID)
	assert.Equal(t, "Zebra", got.Products[0].Title)
}

func TestProductByHandle(t *testing.T) {
	ts := newStorefrontTS(t, [][]string{
		row("1", "Red Mug", "Acme", "Mug", "", "5.00"),
	})

	var got map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/products/h-1", &got))
	assert.Equal(t, "1", got["ID"])

	var errBody map[string]any
	require.Equal(t, http.StatusNotFound, getJSON(t, ts, "/api/products/nope", &errBody))
	assert.Equal(t, "not found", errBody["error"])

	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "nope", details["handle"])
}

func TestProbes(t *testing.T) {
	ts := newStorefrontTS(t, nil)

	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/healthz", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/readyz", nil))
}

func TestEmptyCatalogServesZeroProducts(t *testing.T) {
	// A store pointed at a missing export fails open and serves an
	// empty, still-functioning catalog.
	store := catalog.NewStore(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop(), nil)
	s := &catalog.Server{Store: store, Log: zap.NewNop()}
	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{Service: "storefront"}))
	t.Cleanup(ts.Close)

	var got queryResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/products", &got))
	assert.NotNil(t, got.Products)
	assert.Empty(t, got.Products)
	assert.Zero(t, got.TotalResults)
}

func TestMetricsEndpointAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := catalog.NewStore(writeExport(t, twentyFiveProducts()), zap.NewNop(), catalog.NewMetrics(reg))
	s := &catalog.Server{Store: store, Log: zap.NewNop()}

	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{
		Service:        "storefront",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "s3cret",
	}))
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")

	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
