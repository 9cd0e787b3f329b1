package event

import pkgkafka "github.com/utafrali/searchsync/pkg/kafka"

// Kafka topics carrying catalog change events consumed by the sync
// pipeline.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")

	TopicInventoryItemCreated = pkgkafka.Topic("inventory_item", "created")
	TopicInventoryItemUpdated = pkgkafka.Topic("inventory_item", "updated")
	TopicInventoryItemDeleted = pkgkafka.Topic("inventory_item", "deleted")

	TopicReservationItemCreated = pkgkafka.Topic("reservation_item", "created")
	TopicReservationItemUpdated = pkgkafka.Topic("reservation_item", "updated")
	TopicReservationItemDeleted = pkgkafka.Topic("reservation_item", "deleted")

	TopicPriceListCreated = pkgkafka.Topic("price_list", "created")
	TopicPriceListUpdated = pkgkafka.Topic("price_list", "updated")
	TopicPriceListDeleted = pkgkafka.Topic("price_list", "deleted")

	TopicReviewCreated = pkgkafka.Topic("review", "created")
	TopicReviewUpdated = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted = pkgkafka.Topic("review", "deleted")
)

// Topics lists every topic the service subscribes to.
func Topics() []string {
	return []string{
		TopicProductCreated,
		TopicProductUpdated,
		TopicProductDeleted,
		TopicInventoryItemCreated,
		TopicInventoryItemUpdated,
		TopicInventoryItemDeleted,
		TopicReservationItemCreated,
		TopicReservationItemUpdated,
		TopicReservationItemDeleted,
		TopicPriceListCreated,
		TopicPriceListUpdated,
		TopicPriceListDeleted,
		TopicReviewCreated,
		TopicReviewUpdated,
		TopicReviewDeleted,
	}
}
