package persistence

import (
	"strings"
)

// productSortColumns whitelists the listing sort keys and their columns.
var productSortColumns = map[string]string{
	"name":  "p.name",
	"price": "p.price",
	"stock": "p.stock",
}

// sortDirection normalizes dir to ASC or DESC, falling back to def.
func sortDirection(dir, def string) string {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	default:
		return def
	}
}

// productOrder builds the ORDER BY for a product listing. Unknown keys fall
// back to name; id breaks ties so pages are stable.
func productOrder(sortBy, sortDir string) string {
	column, ok := productSortColumns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		column = productSortColumns["name"]
	}
	return column + " " + sortDirection(sortDir, "ASC") + ", p.id ASC"
}
