package catalog

import (
	"sort"
	"strings"
)

// PageSize is the fixed number of products on one result page.
const PageSize = 12

// FilterAll is the sentinel filter value meaning "no constraint".
const FilterAll = "all"

// Sort keys and directions accepted by the query boundary. Anything else
// falls back to title ascending.
const (
	SortByTitle = "title"
	SortByPrice = "price"
	SortAsc     = "asc"
	SortDesc    = "desc"
)

// QuerySpec is one request's view over the catalog. The zero value means
// no filters, title ascending, first page.
type QuerySpec struct {
	FreeText  string
	Vendor    string
	Type      string
	SortBy    string
	SortOrder string
	Page      int
}

// QueryResult carries one page of products plus result-count metadata.
type QueryResult struct {
	Products     []Product `json:"products"`
	TotalPages   int       `json:"totalPages"`
	TotalResults int       `json:"totalResults"`
}

// Query filters, sorts and pages a catalog snapshot. The snapshot itself
// is never reordered; filtering builds a fresh slice and sorting happens
// on that copy only.
func Query(snapshot []Product, spec QuerySpec) QueryResult {
	matched := filter(snapshot, spec)
	sortProducts(matched, spec)
	return paginate(matched, spec.Page)
}

func filter(snapshot []Product, spec QuerySpec) []Product {
	text := strings.ToLower(spec.FreeText)

	out := make([]Product, 0, len(snapshot))
	for _, p := range snapshot {
		if !filterMatch(spec.Vendor, p.Vendor) {
			continue
		}
		if !filterMatch(spec.Type, p.ProductType) {
			continue
		}
		if text != "" && !textMatch(p, text) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// filterMatch applies one equality filter; an empty value or the "all"
// sentinel leaves the dimension unconstrained.
func filterMatch(want, have string) bool {
	if want == "" || strings.EqualFold(want, FilterAll) {
		return true
	}
	return strings.EqualFold(want, have)
}

// textMatch reports whether the lowercased query occurs in any searchable
// field. This is an unranked OR across fields.
func textMatch(p Product, query string) bool {
	for _, field := range []string{p.Vendor, p.Title, p.BodyHTML, p.Tags} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// sortProducts orders products by the requested key. The sort is stable,
// so products with equal keys keep their post-filter relative order in
// both directions.
func sortProducts(products []Product, spec QuerySpec) {
	var less func(i, j int) bool
	if spec.SortBy == SortByPrice {
		less = func(i, j int) bool {
			return products[i].VariantPrice < products[j].VariantPrice
		}
	} else {
		less = func(i, j int) bool {
			return strings.ToLower(products[i].Title) < strings.ToLower(products[j].Title)
		}
	}

	if spec.SortOrder == SortDesc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}

	sort.SliceStable(products, less)
}

func paginate(products []Product, page int) QueryResult {
	if page < 1 {
		page = 1
	}

	total := len(products)
	start := (page - 1) * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	return QueryResult{
		Products:     products[start:end],
		TotalPages:   (total + PageSize - 1) / PageSize,
		TotalResults: total,
	}
}
