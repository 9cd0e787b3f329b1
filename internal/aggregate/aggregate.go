// Package aggregate computes the derived fields the backend's graph query
// cannot express server-side: per-variant available inventory and
// per-product average rating. All functions are pure.
package aggregate

import "github.com/utafrali/searchsync/internal/domain"

// NoReviewsRating is the rating emitted for a product with zero reviews.
// Averaging an empty review set would otherwise produce NaN, which must
// never reach the index.
const NoReviewsRating float64 = 0

// InventoryQuantity folds a variant's raw location-level rows into a single
// available quantity: the sum over each inventory item of
// (stocked - reserved) across its location levels. A variant with no
// inventory items, or an item with no location-level rows, contributes 0.
// Negative subtotals (reserved exceeding stocked) stand as computed.
func InventoryQuantity(variant domain.ProductVariant) int {
	if len(variant.InventoryItems) == 0 {
		return 0
	}

	byItem := make(map[string]int, len(variant.InventoryItems))
	for _, level := range variant.InventoryLevels {
		byItem[level.InventoryItemID] += level.StockedQuantity - level.ReservedQuantity
	}

	total := 0
	for _, item := range variant.InventoryItems {
		total += byItem[item.InventoryItemID]
	}
	return total
}

// AverageRating returns the mean of the review ratings, or NoReviewsRating
// when there are none.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return NoReviewsRating
	}

	sum := 0.0
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

// Enrich attaches the derived fields to a product in place: each variant's
// InventoryQuantity and the product's Rating.
func Enrich(product *domain.Product) {
	for i := range product.Variants {
		product.Variants[i].InventoryQuantity = InventoryQuantity(product.Variants[i])
	}
	product.Rating = AverageRating(product.Reviews)
}
