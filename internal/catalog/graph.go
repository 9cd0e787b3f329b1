// Package catalog reads denormalized product graphs from the commerce
// backend through its graph query API. The backend owns all catalog state;
// this package never writes to it.
package catalog

import "context"

// Request is a graph-style read against the backend: an entity name, a list
// of dotted field paths (a "relation.*" suffix requests all fields of the
// relation), filters mapping a field to a value or list of values, and
// optional per-relation computation parameters.
type Request struct {
	Entity  string         `json:"entity"`
	Fields  []string       `json:"fields"`
	Filters map[string]any `json:"filters,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// Querier executes graph requests. Query decodes the response's data list
// into out, which must be a pointer to a slice.
type Querier interface {
	Query(ctx context.Context, req Request, out any) error
}

// PriceContext builds the per-relation context that asks the backend to
// compute each variant's price for a fixed region and currency.
func PriceContext(regionID, currencyCode string) map[string]any {
	return map[string]any{
		"variants": map[string]any{
			"calculated_price": map[string]any{
				"region_id":     regionID,
				"currency_code": currencyCode,
			},
		},
	}
}
