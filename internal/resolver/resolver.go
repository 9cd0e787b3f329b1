// Package resolver maps change-event subjects to the set of products whose
// index documents must be rebuilt. Inventory and pricing events do not carry
// product IDs directly; the resolver performs the necessary indirection so
// the dispatcher always operates on a uniform product ID set.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/searchsync/internal/catalog"
	"github.com/utafrali/searchsync/internal/domain"
)

// Resolver resolves event subject IDs to affected product IDs through the
// backend's graph API.
type Resolver struct {
	graph  catalog.Querier
	logger *slog.Logger
}

// New creates a resolver using the given graph querier.
func New(graph catalog.Querier, logger *slog.Logger) *Resolver {
	return &Resolver{graph: graph, logger: logger}
}

// Resolve returns the deduplicated set of product IDs affected by an event
// about the given subject. Batches are resolved with one query per hop, not
// one per ID. A hop that finds zero related rows short-circuits to an empty
// result; an unrecognized subject type resolves to empty with a warning.
// Errors from the per-subject helpers are caught here: they are logged and
// downgraded to an empty result so one malformed subject cannot block
// resolution for others.
func (r *Resolver) Resolve(ctx context.Context, subject domain.SubjectType, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	var (
		productIDs []string
		err        error
	)

	switch subject {
	case domain.SubjectProduct:
		productIDs = ids
	case domain.SubjectReservationItem:
		productIDs, err = r.reservationItemProducts(ctx, ids)
	case domain.SubjectInventoryItem:
		productIDs, err = r.inventoryItemProducts(ctx, ids)
	case domain.SubjectPriceList:
		productIDs, err = r.priceListProducts(ctx, ids)
	default:
		r.logger.Warn("unrecognized event subject type",
			slog.String("subject", string(subject)),
			slog.Any("ids", ids),
		)
		return nil
	}

	if err != nil {
		r.logger.Error("subject resolution failed",
			slog.String("subject", string(subject)),
			slog.Any("ids", ids),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return dedupe(productIDs)
}

// reservationItemProducts walks reservation item -> inventory item ->
// variants -> product IDs.
func (r *Resolver) reservationItemProducts(ctx context.Context, ids []string) ([]string, error) {
	var reservations []domain.ReservationItem
	err := r.graph.Query(ctx, catalog.Request{
		Entity:  "reservation_item",
		Fields:  []string{"id", "inventory_item_id"},
		Filters: map[string]any{"id": ids},
	}, &reservations)
	if err != nil {
		return nil, fmt.Errorf("fetch reservation items: %w", err)
	}

	itemIDs := make([]string, 0, len(reservations))
	for _, res := range reservations {
		if res.InventoryItemID != "" {
			itemIDs = append(itemIDs, res.InventoryItemID)
		}
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	return r.inventoryItemProducts(ctx, itemIDs)
}

// inventoryItemProducts collects the product IDs of every variant that
// references one of the given inventory items.
func (r *Resolver) inventoryItemProducts(ctx context.Context, ids []string) ([]string, error) {
	var items []domain.InventoryItem
	err := r.graph.Query(ctx, catalog.Request{
		Entity:  "inventory_item",
		Fields:  []string{"id", "variants.*", "variants.product_id"},
		Filters: map[string]any{"id": ids},
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory items: %w", err)
	}

	var productIDs []string
	for _, item := range items {
		for _, variant := range item.Variants {
			if variant.ProductID != "" {
				productIDs = append(productIDs, variant.ProductID)
			}
		}
	}
	return productIDs, nil
}

// priceListProducts walks price list -> prices -> price sets -> variants ->
// product IDs.
func (r *Resolver) priceListProducts(ctx context.Context, ids []string) ([]string, error) {
	var priceLists []domain.PriceList
	err := r.graph.Query(ctx, catalog.Request{
		Entity:  "price_list",
		Fields:  []string{"id", "name", "prices.*", "prices.price_set_id"},
		Filters: map[string]any{"id": ids},
	}, &priceLists)
	if err != nil {
		return nil, fmt.Errorf("fetch price lists: %w", err)
	}

	var priceSetIDs []string
	for _, list := range priceLists {
		for _, price := range list.Prices {
			if price.PriceSetID != "" {
				priceSetIDs = append(priceSetIDs, price.PriceSetID)
			}
		}
	}
	if len(priceSetIDs) == 0 {
		return nil, nil
	}

	var variants []domain.VariantRef
	err = r.graph.Query(ctx, catalog.Request{
		Entity:  "product_variant",
		Fields:  []string{"product_id"},
		Filters: map[string]any{"price_set_id": priceSetIDs},
	}, &variants)
	if err != nil {
		return nil, fmt.Errorf("fetch variants by price set: %w", err)
	}

	var productIDs []string
	for _, variant := range variants {
		if variant.ProductID != "" {
			productIDs = append(productIDs, variant.ProductID)
		}
	}
	return productIDs, nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
