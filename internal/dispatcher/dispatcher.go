// Package dispatcher is the entry point for change events: it resolves the
// affected products, reads their current state, derives the computed
// fields, and applies the resulting upserts and deletes to the index.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/searchsync/internal/aggregate"
	"github.com/utafrali/searchsync/internal/document"
	"github.com/utafrali/searchsync/internal/domain"
	"github.com/utafrali/searchsync/pkg/logger"
)

// ProductResolver maps an event subject to the affected product IDs.
type ProductResolver interface {
	Resolve(ctx context.Context, subject domain.SubjectType, ids []string) []string
}

// CatalogReader fetches full product graphs; an empty ID set means all
// products.
type CatalogReader interface {
	Products(ctx context.Context, ids []string) ([]domain.Product, error)
}

// DocumentStore is the slice of the index contract the dispatcher writes
// through.
type DocumentStore interface {
	AddDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error
	DeleteDocument(ctx context.Context, name, id string) error
}

// Dispatcher orchestrates resolve -> read -> aggregate -> build -> write
// for every change event. It holds no state of its own: the backend and the
// index are the only sources of truth, and every sync fully rebuilds the
// document, so concurrent events settle on last-write-wins.
type Dispatcher struct {
	resolver  ProductResolver
	reader    CatalogReader
	store     DocumentStore
	indexName string
	logger    *slog.Logger
}

// New creates a dispatcher writing to the named index.
func New(resolver ProductResolver, reader CatalogReader, store DocumentStore, indexName string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		resolver:  resolver,
		reader:    reader,
		store:     store,
		indexName: indexName,
		logger:    logger,
	}
}

// Handle processes one change event. Products are synced independently and
// concurrently: one product's failure is logged and collected but never
// aborts its siblings. The returned error joins all per-product failures.
func (d *Dispatcher) Handle(ctx context.Context, event domain.ChangeEvent) error {
	start := time.Now()
	defer func() { eventDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.WithContext(ctx, d.logger)
	productIDs := d.resolver.Resolve(ctx, event.Subject, event.IDs)

	// A product event whose resolution came back empty still names the
	// products directly.
	if len(productIDs) == 0 && event.Subject == domain.SubjectProduct {
		productIDs = event.IDs
	}
	if len(productIDs) == 0 {
		log.Debug("change event resolved to no products",
			slog.String("subject", string(event.Subject)),
			slog.Any("ids", event.IDs),
		)
		return nil
	}

	products, err := d.reader.Products(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("read products for event: %w", err)
	}

	var syncErrs []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	record := func(productID string, err error) {
		productSyncFailures.Inc()
		log.Error("product sync failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		mu.Lock()
		syncErrs = append(syncErrs, fmt.Errorf("product %s: %w", productID, err))
		mu.Unlock()
	}

	found := make(map[string]struct{}, len(products))
	for i := range products {
		found[products[i].ID] = struct{}{}

		wg.Add(1)
		go func(product domain.Product) {
			defer wg.Done()
			if err := d.syncProduct(ctx, product); err != nil {
				record(product.ID, err)
			}
		}(products[i])
	}

	// Products that resolved but no longer exist in the backend leave the
	// index too.
	for _, id := range productIDs {
		if _, ok := found[id]; ok {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := d.store.DeleteDocument(ctx, d.indexName, id); err != nil {
				record(id, err)
				return
			}
			productsDeleted.Inc()
			log.Info("removed document for deleted product",
				slog.String("product_id", id),
			)
		}(id)
	}

	wg.Wait()
	return errors.Join(syncErrs...)
}

// syncProduct runs one product's pipeline: derive fields, then either
// upsert the built document (published) or delete any existing document
// (every other status). The delete is idempotent.
func (d *Dispatcher) syncProduct(ctx context.Context, product domain.Product) error {
	log := logger.WithContext(ctx, d.logger)
	aggregate.Enrich(&product)

	if product.Status != domain.StatusPublished {
		if err := d.store.DeleteDocument(ctx, d.indexName, product.ID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		productsDeleted.Inc()
		log.Info("document removed from index",
			slog.String("product_id", product.ID),
			slog.String("status", product.Status),
		)
		return nil
	}

	doc := document.Build(product)
	if err := d.store.AddDocuments(ctx, d.indexName, []domain.ProductDocument{doc}); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	productsUpserted.Inc()
	log.Info("document upserted",
		slog.String("product_id", product.ID),
		slog.Int("variants", len(doc.Variants)),
	)
	return nil
}

// SyncAll rebuilds the index from every product in the backend, through the
// same per-product pipeline as event handling.
func (d *Dispatcher) SyncAll(ctx context.Context) error {
	log := logger.WithContext(ctx, d.logger)

	products, err := d.reader.Products(ctx, nil)
	if err != nil {
		return fmt.Errorf("read all products: %w", err)
	}

	var syncErrs []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range products {
		wg.Add(1)
		go func(product domain.Product) {
			defer wg.Done()
			if err := d.syncProduct(ctx, product); err != nil {
				productSyncFailures.Inc()
				log.Error("product sync failed",
					slog.String("product_id", product.ID),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				syncErrs = append(syncErrs, fmt.Errorf("product %s: %w", product.ID, err))
				mu.Unlock()
			}
		}(products[i])
	}

	wg.Wait()

	log.Info("full reindex completed",
		slog.Int("products", len(products)),
		slog.Int("failures", len(syncErrs)),
	)
	return errors.Join(syncErrs...)
}
