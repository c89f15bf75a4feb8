// Package catalog talks to the external product search provider and
// converts its loosely-shaped payloads into the canonical product
// record the scoring pipeline consumes.
package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/trendscout/research-service/internal/scoring"
)

// Alternate key names per field, tried in order. Provider payloads drift
// between API versions and between the search and detail endpoints, so
// the first present-and-parseable key wins.
var (
	idKeys       = []string{"product_id", "item_id", "productId", "itemId", "id"}
	titleKeys    = []string{"product_title", "title", "name", "subject"}
	imageKeys    = []string{"product_main_image_url", "image_url", "main_image", "image"}
	priceKeys    = []string{"app_sale_price", "target_sale_price", "sale_price", "original_price"}
	origKeys     = []string{"original_price", "target_original_price"}
	salesKeys    = []string{"lastest_volume", "latest_volume", "volume", "sales", "orders"}
	ratingKeys   = []string{"evaluate_rate", "product_score", "rating"}
	reviewKeys   = []string{"evaluation_count", "comment_count", "reviews"}
	urlKeys      = []string{"product_detail_url", "detail_url", "url", "link"}
	supplierKeys = []string{"shop_name", "seller_name", "store_name"}
	categoryKeys = []string{"first_level_category_name", "category_name", "category"}
)

// Normalize converts one raw provider item into a canonical product.
// Returns false to signal "drop this record": no usable identifier or a
// non-positive price after extraction. Malformed upstream data never
// produces an error; this function's entire purpose is to absorb shape
// variance into a single safe type.
func Normalize(raw json.RawMessage) (scoring.Product, bool) {
	record, ok := unwrapItem(raw)
	if !ok {
		return scoring.Product{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal(record, &fields); err != nil {
		return scoring.Product{}, false
	}

	id := firstString(fields, idKeys)
	price, priceOK := firstNumber(fields, priceKeys)
	if id == "" || !priceOK || price <= 0 {
		return scoring.Product{}, false
	}

	p := scoring.Product{
		ExternalID:  id,
		Title:       firstString(fields, titleKeys),
		ImageURL:    firstString(fields, imageKeys),
		Price:       price,
		SalesCount:  firstCount(fields, salesKeys),
		ReviewCount: firstCount(fields, reviewKeys),
		SourceURL:   firstString(fields, urlKeys),
	}

	if orig, ok := firstNumber(fields, origKeys); ok && orig > 0 {
		p.OriginalPrice = &orig
	}
	if rating, ok := extractRating(fields); ok {
		p.Rating = &rating
	}
	if supplier := firstString(fields, supplierKeys); supplier != "" {
		p.SupplierName = &supplier
	}
	if category := firstString(fields, categoryKeys); category != "" {
		p.Category = &category
	}
	return p, true
}

// NormalizeAll extracts and normalizes every record in a raw provider
// response, silently dropping records that fail the drop rule.
func NormalizeAll(raw json.RawMessage) []scoring.Product {
	items := ExtractItems(raw)
	products := make([]scoring.Product, 0, len(items))
	for _, item := range items {
		if p, ok := Normalize(item); ok {
			products = append(products, p)
		}
	}
	return products
}

// firstString returns the first non-empty string value among the keys.
// Numeric identifiers are stringified rather than rejected.
func firstString(fields map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstNumber returns the first parseable numeric value among the keys.
// Providers send prices both as numbers and as strings with currency
// prefixes and thousands separators.
func firstNumber(fields map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		v, present := fields[key]
		if !present {
			continue
		}
		if n, ok := parseNumber(v); ok {
			return n, true
		}
	}
	return 0, false
}

func firstCount(fields map[string]any, keys []string) int {
	n, ok := firstNumber(fields, keys)
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "US $")
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// extractRating maps the provider's percentage-like rating onto the 0-5
// scale: "96.0%" becomes 4.8. Values already at or below 5 are taken as
// star ratings and passed through.
func extractRating(fields map[string]any) (float64, bool) {
	for _, key := range ratingKeys {
		v, present := fields[key]
		if !present {
			continue
		}

		var n float64
		switch r := v.(type) {
		case float64:
			n = r
		case string:
			s := strings.TrimSuffix(strings.TrimSpace(r), "%")
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			n = parsed
		default:
			continue
		}

		if n < 0 {
			continue
		}
		if n > 5 {
			n = n / 20 // 0-100 percentage scale onto 0-5
		}
		if n > 5 {
			n = 5
		}
		return n, true
	}
	return 0, false
}
