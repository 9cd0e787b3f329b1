// Package event bridges Kafka change events into the sync pipeline. The
// envelope is decoded once here; everything downstream works with the
// typed subject and ID set.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/utafrali/searchsync/internal/domain"
	pkgkafka "github.com/utafrali/searchsync/pkg/kafka"
	"github.com/utafrali/searchsync/pkg/logger"
)

// EventDispatcher applies one decoded change event to the index.
type EventDispatcher interface {
	Handle(ctx context.Context, evt domain.ChangeEvent) error
}

// changeData is the payload shape shared by all catalog change events: a
// single ID or a list of them, plus the owning product for review events.
type changeData struct {
	ID        idList `json:"id"`
	ProductID idList `json:"product_id"`
}

// idList accepts both a single string and a string array.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = idList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("id must be a string or a string array: %w", err)
	}
	*l = idList(many)
	return nil
}

// Consumer translates Kafka events into change events and hands them to
// the dispatcher.
type Consumer struct {
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewConsumer creates a consumer feeding the given dispatcher.
func NewConsumer(dispatcher EventDispatcher, logger *slog.Logger) *Consumer {
	return &Consumer{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle decodes a Kafka event and dispatches the resulting change event.
// Unknown event types are logged and dropped so the consumer keeps its
// offset moving.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}
	log := logger.WithContext(ctx, c.logger)

	var data changeData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	var evt domain.ChangeEvent
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated, TopicProductDeleted:
		evt = domain.ChangeEvent{Subject: domain.SubjectProduct, IDs: data.ID}
	case TopicInventoryItemCreated, TopicInventoryItemUpdated, TopicInventoryItemDeleted:
		evt = domain.ChangeEvent{Subject: domain.SubjectInventoryItem, IDs: data.ID}
	case TopicReservationItemCreated, TopicReservationItemUpdated, TopicReservationItemDeleted:
		evt = domain.ChangeEvent{Subject: domain.SubjectReservationItem, IDs: data.ID}
	case TopicPriceListCreated, TopicPriceListUpdated, TopicPriceListDeleted:
		evt = domain.ChangeEvent{Subject: domain.SubjectPriceList, IDs: data.ID}
	case TopicReviewCreated, TopicReviewUpdated, TopicReviewDeleted:
		// Review events name the product they belong to, so they sync
		// that product directly.
		evt = domain.ChangeEvent{Subject: domain.SubjectProduct, IDs: data.ProductID}
	default:
		log.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if len(evt.IDs) == 0 {
		log.WarnContext(ctx, "change event carries no IDs",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if err := c.dispatcher.Handle(ctx, evt); err != nil {
		return fmt.Errorf("dispatch %s: %w", event.EventType, err)
	}

	log.InfoContext(ctx, "change event dispatched",
		slog.String("event_type", event.EventType),
		slog.String("subject", string(evt.Subject)),
		slog.Int("id_count", len(evt.IDs)),
	)

	return nil
}
