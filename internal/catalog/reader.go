package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/searchsync/internal/domain"
)

// productGraphFields is the field set requested for every product graph
// fetch: all product scalars plus the nested relations the index document
// is built from.
var productGraphFields = []string{
	"*",
	"options.*",
	"images.*",
	"tags.*",
	"categories.*",
	"variants.*",
	"variants.calculated_price.*",
	"variants.inventory_items.*",
}

// Reader fetches product graphs in two phases: the graph query for products
// with their nested relations, then targeted sub-fetches for the inventory
// location levels and review rows the backend cannot aggregate server-side.
type Reader struct {
	graph        Querier
	regionID     string
	currencyCode string
	logger       *slog.Logger
}

// NewReader creates a reader using the given graph querier and pricing
// context. The region and currency are fixed configuration, not derived per
// request.
func NewReader(graph Querier, regionID, currencyCode string, logger *slog.Logger) *Reader {
	return &Reader{
		graph:        graph,
		regionID:     regionID,
		currencyCode: currencyCode,
		logger:       logger,
	}
}

// Products returns the full product graphs for the given IDs, with raw
// inventory levels attached per variant and review rows attached per
// product. An empty ID set fetches all products (full reindex). Any read
// failure propagates; no partial results are synthesized.
func (r *Reader) Products(ctx context.Context, ids []string) ([]domain.Product, error) {
	req := Request{
		Entity:  "product",
		Fields:  productGraphFields,
		Context: PriceContext(r.regionID, r.currencyCode),
	}
	if len(ids) > 0 {
		req.Filters = map[string]any{"id": ids}
	}

	var products []domain.Product
	if err := r.graph.Query(ctx, req, &products); err != nil {
		return nil, fmt.Errorf("fetch product graphs: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	if err := r.attachInventoryLevels(ctx, products); err != nil {
		return nil, err
	}
	if err := r.attachReviews(ctx, products); err != nil {
		return nil, err
	}

	r.logger.Debug("fetched product graphs",
		slog.Int("requested", len(ids)),
		slog.Int("found", len(products)),
	)
	return products, nil
}

// attachInventoryLevels fetches the location-level rows for every inventory
// item referenced by any variant, in one query, and attaches each variant's
// rows to it.
func (r *Reader) attachInventoryLevels(ctx context.Context, products []domain.Product) error {
	itemIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, p := range products {
		for _, v := range p.Variants {
			for _, item := range v.InventoryItems {
				if item.InventoryItemID == "" {
					continue
				}
				if _, ok := seen[item.InventoryItemID]; ok {
					continue
				}
				seen[item.InventoryItemID] = struct{}{}
				itemIDs = append(itemIDs, item.InventoryItemID)
			}
		}
	}
	if len(itemIDs) == 0 {
		return nil
	}

	var levels []domain.InventoryLevel
	err := r.graph.Query(ctx, Request{
		Entity:  "inventory_level",
		Fields:  []string{"*"},
		Filters: map[string]any{"inventory_item_id": itemIDs},
	}, &levels)
	if err != nil {
		return fmt.Errorf("fetch inventory levels: %w", err)
	}

	byItem := make(map[string][]domain.InventoryLevel, len(itemIDs))
	for _, level := range levels {
		byItem[level.InventoryItemID] = append(byItem[level.InventoryItemID], level)
	}

	for pi := range products {
		for vi := range products[pi].Variants {
			variant := &products[pi].Variants[vi]
			variant.InventoryLevels = variant.InventoryLevels[:0]
			for _, item := range variant.InventoryItems {
				variant.InventoryLevels = append(variant.InventoryLevels, byItem[item.InventoryItemID]...)
			}
		}
	}
	return nil
}

// attachReviews fetches the review rows for all products in one query and
// attaches each product's rows to it.
func (r *Reader) attachReviews(ctx context.Context, products []domain.Product) error {
	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
	}

	var reviews []domain.Review
	err := r.graph.Query(ctx, Request{
		Entity:  "review",
		Fields:  []string{"id", "product_id", "rating"},
		Filters: map[string]any{"product_id": productIDs},
	}, &reviews)
	if err != nil {
		return fmt.Errorf("fetch reviews: %w", err)
	}

	byProduct := make(map[string][]domain.Review)
	for _, review := range reviews {
		byProduct[review.ProductID] = append(byProduct[review.ProductID], review)
	}

	for i := range products {
		products[i].Reviews = byProduct[products[i].ID]
	}
	return nil
}
