package catalog

import "sort"

// Facets lists the distinct filterable dimensions of the loaded catalog.
type Facets struct {
	Vendors []string `json:"vendors"`
	Types   []string `json:"types"`
}

// VendorsAndTypes projects the distinct, sorted, non-empty vendor and
// product-type values out of a snapshot.
func VendorsAndTypes(snapshot []Product) Facets {
	return Facets{
		Vendors: distinctSorted(snapshot, func(p Product) string { return p.Vendor }),
		Types:   distinctSorted(snapshot, func(p Product) string { return p.ProductType }),
	}
}

func distinctSorted(snapshot []Product, field func(Product) string) []string {
	seen := make(map[string]struct{}, len(snapshot))
	out := make([]string, 0, len(snapshot))
	for _, p := range snapshot {
		v := field(p)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ProductSuggestion is the minimal projection the typeahead matcher
// builds its index from.
type ProductSuggestion struct {
	ID    string `json:"ID"`
	Title string `json:"TITLE"`
}

// SuggestionIndex feeds the client-side fuzzy matcher: a deduplicated
// sorted vendor list plus one {id,title} entry per cached product, in
// cache order. Duplicate titles are allowed; ids are assumed unique.
type SuggestionIndex struct {
	Vendors  []string            `json:"vendors"`
	Products []ProductSuggestion `json:"products"`
}

func Suggestions(snapshot []Product) SuggestionIndex {
	products := make([]ProductSuggestion, 0, len(snapshot))
	for _, p := range snapshot {
		products = append(products, ProductSuggestion{ID: p.ID, Title: p.Title})
	}
	return SuggestionIndex{
		Vendors:  distinctSorted(snapshot, func(p Product) string { return p.Vendor }),
		Products: products,
	}
}

// FindByHandle returns the first product with the given handle. A miss is
// a normal outcome, not an error. Duplicate handles resolve to the
// earliest row in the export.
func FindByHandle(snapshot []Product, handle string) (Product, bool) {
	for _, p := range snapshot {
		if p.Handle == handle {
			return p, true
		}
	}
	return Product{}, false
}
