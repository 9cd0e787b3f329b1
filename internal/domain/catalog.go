package domain

import "time"

// Product publication statuses as reported by the commerce backend.
// Only published products are kept in the search index; every other
// status causes the document to be removed.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Product is the denormalized product graph as returned by the commerce
// backend, plus the derived Rating computed locally from Reviews.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	Description   string    `json:"description"`
	Handle        string    `json:"handle"`
	Status        string    `json:"status"`
	IsGiftcard    bool      `json:"is_giftcard"`
	Discountable  bool      `json:"discountable"`
	Thumbnail     string    `json:"thumbnail"`
	CollectionID  string    `json:"collection_id"`
	TypeID        string    `json:"type_id"`
	Weight        float64   `json:"weight"`
	Length        float64   `json:"length"`
	Height        float64   `json:"height"`
	Width         float64   `json:"width"`
	HSCode        string    `json:"hs_code"`
	OriginCountry string    `json:"origin_country"`
	MidCode       string    `json:"mid_code"`
	Material      string    `json:"material"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Options    []ProductOption   `json:"options"`
	Tags       []ProductTag      `json:"tags"`
	Images     []ProductImage    `json:"images"`
	Categories []ProductCategory `json:"categories"`
	Variants   []ProductVariant  `json:"variants"`

	// Reviews are attached by the catalog reader; Rating is derived from
	// them by the aggregator and is never read from the backend.
	Reviews []Review `json:"-"`
	Rating  float64  `json:"-"`
}

// ProductOption is a configurable option attached to a product.
type ProductOption struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ProductID string            `json:"product_id"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt *time.Time        `json:"deleted_at"`
}

// ProductTag carries a single tag value.
type ProductTag struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ProductImage carries a single image URL.
type ProductImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProductCategory is a category reference attached to a product.
type ProductCategory struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// ProductVariant belongs to exactly one product. InventoryLevels holds the
// raw location-level rows for all of the variant's inventory items; the
// aggregator folds them into InventoryQuantity.
type ProductVariant struct {
	ID              string                 `json:"id"`
	ProductID       string                 `json:"product_id"`
	Title           string                 `json:"title"`
	SKU             string                 `json:"sku"`
	Barcode         string                 `json:"barcode"`
	AllowBackorder  bool                   `json:"allow_backorder"`
	ManageInventory bool                   `json:"manage_inventory"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	CalculatedPrice *CalculatedPrice       `json:"calculated_price"`
	InventoryItems  []VariantInventoryItem `json:"inventory_items"`

	// Attached by the catalog reader from the inventory_level sub-fetch.
	InventoryLevels []InventoryLevel `json:"-"`
	// Derived by the aggregator from InventoryLevels.
	InventoryQuantity int `json:"-"`
}

// CalculatedPrice is the price computed by the backend for the configured
// region and currency context.
type CalculatedPrice struct {
	CalculatedAmount float64 `json:"calculated_amount"`
	OriginalAmount   float64 `json:"original_amount"`
	CurrencyCode     string  `json:"currency_code"`
}

// VariantInventoryItem links a variant to an inventory item by reference.
// Inventory items are not owned by the variant.
type VariantInventoryItem struct {
	InventoryItemID string `json:"inventory_item_id"`
}

// InventoryLevel is the stocked/reserved record for one inventory item at
// one stock location. Missing quantities decode to 0.
type InventoryLevel struct {
	ID               string `json:"id"`
	InventoryItemID  string `json:"inventory_item_id"`
	LocationID       string `json:"location_id"`
	StockedQuantity  int    `json:"stocked_quantity"`
	ReservedQuantity int    `json:"reserved_quantity"`
}

// Review is a customer review associated with exactly one product.
type Review struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Rating    float64 `json:"rating"`
}

// ReservationItem references exactly one inventory item. Used only while
// resolving reservation events back to products.
type ReservationItem struct {
	ID              string `json:"id"`
	InventoryItemID string `json:"inventory_item_id"`
}

// InventoryItem is the resolver-side projection of an inventory item with
// the variants that reference it.
type InventoryItem struct {
	ID       string           `json:"id"`
	Variants []VariantRef     `json:"variants"`
	Levels   []InventoryLevel `json:"location_levels"`
}

// VariantRef is a minimal variant row used during event resolution.
type VariantRef struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
}

// PriceList owns zero or more prices, each referencing a price set.
type PriceList struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Prices []Price `json:"prices"`
}

// Price belongs to a price list and references a price set, which variants
// point at in turn.
type Price struct {
	ID         string `json:"id"`
	PriceSetID string `json:"price_set_id"`
}
