package domain

// SubjectType classifies the entity an incoming change event is about. It
// is decoded once at the event boundary; downstream code never inspects ID
// prefixes.
type SubjectType string

const (
	SubjectProduct         SubjectType = "product"
	SubjectReservationItem SubjectType = "reservation_item"
	SubjectInventoryItem   SubjectType = "inventory_item"
	SubjectPriceList       SubjectType = "price_list"
	SubjectUnknown         SubjectType = "unknown"
)

// ChangeEvent is the uniform internal shape of an inbound change event: the
// subject classification and the IDs the event carries.
type ChangeEvent struct {
	Subject SubjectType
	IDs     []string
}
