// Package document maps enriched product graphs into the flat shape the
// search index stores.
package document

import "github.com/utafrali/searchsync/internal/domain"

// Build projects a fully populated product (derived fields already attached
// by the aggregator) into its index document. It is deterministic and total:
// every product passed in is built regardless of status — the decision to
// index or delete belongs to the dispatcher.
func Build(product domain.Product) domain.ProductDocument {
	doc := domain.ProductDocument{
		ID:            product.ID,
		Title:         product.Title,
		Subtitle:      product.Subtitle,
		Description:   product.Description,
		Handle:        product.Handle,
		Status:        product.Status,
		IsGiftcard:    product.IsGiftcard,
		Discountable:  product.Discountable,
		Thumbnail:     product.Thumbnail,
		CollectionID:  product.CollectionID,
		TypeID:        product.TypeID,
		Weight:        product.Weight,
		Length:        product.Length,
		Height:        product.Height,
		Width:         product.Width,
		HSCode:        product.HSCode,
		OriginCountry: product.OriginCountry,
		MidCode:       product.MidCode,
		Material:      product.Material,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
		Options:       make([]domain.OptionDocument, 0, len(product.Options)),
		Tags:          make([]string, 0, len(product.Tags)),
		Images:        make([]string, 0, len(product.Images)),
		Variants:      make([]domain.VariantDocument, 0, len(product.Variants)),
		Rating:        product.Rating,
	}

	for _, option := range product.Options {
		// Fixed field subset; metadata and deleted_at are forced null.
		doc.Options = append(doc.Options, domain.OptionDocument{
			ID:        option.ID,
			Title:     option.Title,
			ProductID: option.ProductID,
			Metadata:  nil,
			CreatedAt: option.CreatedAt,
			UpdatedAt: option.UpdatedAt,
			DeletedAt: nil,
		})
	}

	for _, tag := range product.Tags {
		doc.Tags = append(doc.Tags, tag.Value)
	}

	for _, image := range product.Images {
		doc.Images = append(doc.Images, image.URL)
	}

	for _, variant := range product.Variants {
		doc.Variants = append(doc.Variants, domain.VariantDocument{
			ID:                variant.ID,
			ProductID:         variant.ProductID,
			Title:             variant.Title,
			SKU:               variant.SKU,
			Barcode:           variant.Barcode,
			AllowBackorder:    variant.AllowBackorder,
			ManageInventory:   variant.ManageInventory,
			CreatedAt:         variant.CreatedAt,
			UpdatedAt:         variant.UpdatedAt,
			CalculatedPrice:   variant.CalculatedPrice,
			InventoryQuantity: variant.InventoryQuantity,
		})
	}

	return doc
}
