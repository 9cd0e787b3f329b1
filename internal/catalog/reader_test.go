package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchsync/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGraph serves canned rows per entity and records the requests it saw.
type fakeGraph struct {
	rows     map[string]any
	failures map[string]error
	requests []Request
}

func (f *fakeGraph) Query(_ context.Context, req Request, out any) error {
	f.requests = append(f.requests, req)
	if err := f.failures[req.Entity]; err != nil {
		return err
	}

	rows, ok := f.rows[req.Entity]
	if !ok {
		rows = []any{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeGraph) requestFor(entity string) (Request, bool) {
	for _, req := range f.requests {
		if req.Entity == entity {
			return req, true
		}
	}
	return Request{}, false
}

func TestReader_ProductsAttachesLevelsAndReviews(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"product": []domain.Product{
			{
				ID:     "prod_1",
				Status: domain.StatusPublished,
				Variants: []domain.ProductVariant{
					{
						ID:        "var_1",
						ProductID: "prod_1",
						InventoryItems: []domain.VariantInventoryItem{
							{InventoryItemID: "iitem_1"},
						},
					},
				},
			},
		},
		"inventory_level": []domain.InventoryLevel{
			{ID: "ilev_1", InventoryItemID: "iitem_1", LocationID: "loc_1", StockedQuantity: 10, ReservedQuantity: 3},
		},
		"review": []domain.Review{
			{ID: "rev_1", ProductID: "prod_1", Rating: 4},
		},
	}}

	reader := NewReader(graph, "reg_1", "eur", newTestLogger())
	products, err := reader.Products(context.Background(), []string{"prod_1"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	require.Len(t, products[0].Variants, 1)
	require.Len(t, products[0].Variants[0].InventoryLevels, 1)
	assert.Equal(t, 10, products[0].Variants[0].InventoryLevels[0].StockedQuantity)
	require.Len(t, products[0].Reviews, 1)
	assert.InDelta(t, 4.0, products[0].Reviews[0].Rating, 1e-9)
}

func TestReader_ProductsSendsPricingContext(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{}}
	reader := NewReader(graph, "reg_eu", "eur", newTestLogger())

	_, err := reader.Products(context.Background(), []string{"prod_1"})
	require.NoError(t, err)

	req, ok := graph.requestFor("product")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": []string{"prod_1"}}, req.Filters)
	assert.Contains(t, req.Fields, "variants.calculated_price.*")

	variants, ok := req.Context["variants"].(map[string]any)
	require.True(t, ok)
	price, ok := variants["calculated_price"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reg_eu", price["region_id"])
	assert.Equal(t, "eur", price["currency_code"])
}

func TestReader_EmptyIDsMeansAllProducts(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{}}
	reader := NewReader(graph, "reg_1", "eur", newTestLogger())

	_, err := reader.Products(context.Background(), nil)
	require.NoError(t, err)

	req, ok := graph.requestFor("product")
	require.True(t, ok)
	assert.Nil(t, req.Filters, "no filter clause when fetching all products")
}

func TestReader_BatchesSubFetches(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"product": []domain.Product{
			{
				ID: "prod_1",
				Variants: []domain.ProductVariant{
					{ID: "var_1", InventoryItems: []domain.VariantInventoryItem{{InventoryItemID: "iitem_1"}}},
					{ID: "var_2", InventoryItems: []domain.VariantInventoryItem{{InventoryItemID: "iitem_2"}}},
				},
			},
			{
				ID: "prod_2",
				Variants: []domain.ProductVariant{
					// Shared inventory item must not be requested twice.
					{ID: "var_3", InventoryItems: []domain.VariantInventoryItem{{InventoryItemID: "iitem_1"}}},
				},
			},
		},
	}}

	reader := NewReader(graph, "reg_1", "eur", newTestLogger())
	_, err := reader.Products(context.Background(), []string{"prod_1", "prod_2"})
	require.NoError(t, err)

	// One product query, one inventory_level query, one review query.
	require.Len(t, graph.requests, 3)

	levelReq, ok := graph.requestFor("inventory_level")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"iitem_1", "iitem_2"}, levelReq.Filters["inventory_item_id"])

	reviewReq, ok := graph.requestFor("review")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"prod_1", "prod_2"}, reviewReq.Filters["product_id"])
}

func TestReader_NoProductsSkipsSubFetches(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{}}
	reader := NewReader(graph, "reg_1", "eur", newTestLogger())

	products, err := reader.Products(context.Background(), []string{"prod_gone"})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Len(t, graph.requests, 1)
}

func TestReader_SubFetchFailurePropagates(t *testing.T) {
	graph := &fakeGraph{
		rows: map[string]any{
			"product": []domain.Product{
				{ID: "prod_1", Variants: []domain.ProductVariant{
					{ID: "var_1", InventoryItems: []domain.VariantInventoryItem{{InventoryItemID: "iitem_1"}}},
				}},
			},
		},
		failures: map[string]error{"inventory_level": errors.New("backend unavailable")},
	}

	reader := NewReader(graph, "reg_1", "eur", newTestLogger())
	_, err := reader.Products(context.Background(), []string{"prod_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory levels")
}
