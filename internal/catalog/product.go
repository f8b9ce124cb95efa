package catalog

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Column names of the product export. SEO, PRICE_RANGE_V2 and
// FEATURED_IMAGE cells carry JSON-encoded text inside the CSV.
const (
	colID            = "ID"
	colTitle         = "TITLE"
	colVendor        = "VENDOR"
	colStatus        = "STATUS"
	colProductType   = "PRODUCT_TYPE"
	colTags          = "TAGS"
	colBodyHTML      = "BODY_HTML"
	colHandle        = "HANDLE"
	colFeaturedImage = "FEATURED_IMAGE"
	colSEO           = "SEO"
	colPriceRange    = "PRICE_RANGE_V2"
)

const statusActive = "ACTIVE"

// FeaturedImage is the structured image record embedded in the export.
type FeaturedImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	ID      string `json:"id"`
}

// Product is one normalized, immutable catalog record. The JSON field
// names mirror the export columns because they are the wire contract the
// storefront client was built against.
type Product struct {
	ID            string         `json:"ID"`
	Title         string         `json:"TITLE"`
	Vendor        string         `json:"VENDOR"`
	Status        string         `json:"STATUS"`
	ProductType   string         `json:"PRODUCT_TYPE"`
	Tags          string         `json:"TAGS"`
	BodyHTML      string         `json:"BODY_HTML"`
	Handle        string         `json:"HANDLE"`
	FeaturedImage *FeaturedImage `json:"FEATURED_IMAGE"`
	Excerpt       *string        `json:"PRODUCT_EXCERPT"`
	VariantPrice  float64        `json:"Variant Price"`
}

// RawRow is one decoded CSV record, keyed by column name. It only lives
// for the duration of normalization.
type RawRow map[string]string

// normalizeRow converts a raw export row into a Product. Embedded JSON is
// handled defensively: a cell that is not valid JSON, or that lacks the
// expected path, degrades to its documented fallback. Nothing here fails.
func normalizeRow(row RawRow) Product {
	p := Product{
		ID:          row[colID],
		Title:       row[colTitle],
		Vendor:      row[colVendor],
		Status:      row[colStatus],
		ProductType: row[colProductType],
		Tags:        row[colTags],
		BodyHTML:    row[colBodyHTML],
		Handle:      row[colHandle],
	}

	if seo := row[colSEO]; gjson.Valid(seo) {
		if t := gjson.Get(seo, "title"); t.String() != "" {
			p.Title = t.String()
		}
		if d := gjson.Get(seo, "description"); d.String() != "" {
			desc := d.String()
			p.Excerpt = &desc
		}
	}

	// A zero or unparseable price stays 0 and the inclusion predicate
	// drops the row later. Negative amounts are treated the same way.
	if cell := row[colPriceRange]; gjson.Valid(cell) {
		if amount := gjson.Get(cell, "min_variant_price.amount").Float(); amount > 0 {
			p.VariantPrice = amount
		}
	}

	// The image is structural: only a JSON object counts, a bare string
	// or malformed cell yields no image rather than the raw text.
	if cell := row[colFeaturedImage]; gjson.Valid(cell) && gjson.Parse(cell).IsObject() {
		var img FeaturedImage
		if err := json.Unmarshal([]byte(cell), &img); err == nil {
			p.FeaturedImage = &img
		}
	}

	return p
}

// active reports whether a normalized row belongs in the catalog: the
// export marks it sellable and it carries a strictly positive price.
func (p Product) active() bool {
	return strings.EqualFold(p.Status, statusActive) && p.VariantPrice > 0
}
