package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchsync/internal/catalog"
	"github.com/utafrali/searchsync/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGraph serves canned rows per entity.
type fakeGraph struct {
	rows     map[string]any
	failures map[string]error
	requests []catalog.Request
}

func (f *fakeGraph) Query(_ context.Context, req catalog.Request, out any) error {
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

func TestResolve_ProductSubjectReturnsOwnIDs(t *testing.T) {
	r := New(&fakeGraph{}, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectProduct, []string{"prod_1", "prod_2", "prod_1"})

	assert.Equal(t, []string{"prod_1", "prod_2"}, got)
}

func TestResolve_ReservationItemWalksToProduct(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"reservation_item": []domain.ReservationItem{
			{ID: "resitem_1", InventoryItemID: "iitem_2"},
		},
		"inventory_item": []domain.InventoryItem{
			{ID: "iitem_2", Variants: []domain.VariantRef{{ID: "var_2", ProductID: "prod_2"}}},
		},
	}}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectReservationItem, []string{"resitem_1"})

	assert.Equal(t, []string{"prod_2"}, got)
}

func TestResolve_InventoryItemCollectsAllVariantProducts(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"inventory_item": []domain.InventoryItem{
			{ID: "iitem_1", Variants: []domain.VariantRef{
				{ID: "var_1", ProductID: "prod_1"},
				{ID: "var_2", ProductID: "prod_2"},
			}},
			{ID: "iitem_2", Variants: []domain.VariantRef{
				{ID: "var_3", ProductID: "prod_1"},
			}},
		},
	}}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectInventoryItem, []string{"iitem_1", "iitem_2"})

	assert.Equal(t, []string{"prod_1", "prod_2"}, got)
	// Batched: a single inventory_item query for both IDs.
	require.Len(t, graph.requests, 1)
}

func TestResolve_PriceListUnionDeduplicated(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"price_list": []domain.PriceList{
			{ID: "plist_1", Prices: []domain.Price{
				{ID: "price_1", PriceSetID: "pset_1"},
				{ID: "price_2", PriceSetID: "pset_2"},
			}},
		},
		"product_variant": []domain.VariantRef{
			{ID: "var_1", ProductID: "prod_1"},
			{ID: "var_2", ProductID: "prod_1"},
			{ID: "var_3", ProductID: "prod_3"},
		},
	}}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectPriceList, []string{"plist_1"})

	assert.Equal(t, []string{"prod_1", "prod_3"}, got)

	// Two hops, one query each.
	require.Len(t, graph.requests, 2)
	assert.Equal(t, map[string]any{"price_set_id": []string{"pset_1", "pset_2"}}, graph.requests[1].Filters)
}

func TestResolve_EmptyHopShortCircuits(t *testing.T) {
	graph := &fakeGraph{rows: map[string]any{
		"price_list": []domain.PriceList{
			{ID: "plist_1"}, // no prices
		},
	}}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectPriceList, []string{"plist_1"})

	assert.Empty(t, got)
	// No variant query after the empty prices hop.
	require.Len(t, graph.requests, 1)
}

func TestResolve_UnrecognizedSubjectIsEmptyNotError(t *testing.T) {
	graph := &fakeGraph{}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectType("order"), []string{"order_1"})

	assert.Empty(t, got)
	assert.Empty(t, graph.requests)
}

func TestResolve_GraphFailureDowngradedToEmpty(t *testing.T) {
	graph := &fakeGraph{
		failures: map[string]error{"inventory_item": errors.New("backend down")},
	}
	r := New(graph, newTestLogger())

	got := r.Resolve(context.Background(), domain.SubjectInventoryItem, []string{"iitem_1"})

	assert.Empty(t, got)
}

func TestResolve_NoIDs(t *testing.T) {
	r := New(&fakeGraph{}, newTestLogger())

	assert.Empty(t, r.Resolve(context.Background(), domain.SubjectProduct, nil))
}
