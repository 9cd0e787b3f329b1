package domain

import "time"

// ProductDocument is the flat projection of a product synced into the
// search index. It is a pure value type: fully rebuilt from current backend
// state on every sync, never patched in place. The document ID is the
// product's own ID.
type ProductDocument struct {
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

	// Options carry a fixed field subset; tags and images are reduced to
	// bare values.
	Options  []OptionDocument  `json:"options"`
	Tags     []string          `json:"tags"`
	Images   []string          `json:"images"`
	Variants []VariantDocument `json:"variants"`

	Rating float64 `json:"rating"`
}

// OptionDocument is the trimmed option shape emitted into documents.
// Metadata and DeletedAt are always null.
type OptionDocument struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ProductID string            `json:"product_id"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt *time.Time        `json:"deleted_at"`
}

// VariantDocument is a variant inlined into its product document with the
// computed inventory quantity.
type VariantDocument struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku"`
	Barcode           string           `json:"barcode"`
	AllowBackorder    bool             `json:"allow_backorder"`
	ManageInventory   bool             `json:"manage_inventory"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price"`
	InventoryQuantity int              `json:"inventory_quantity"`
}
