// Package meili adapts the index contract onto Meilisearch through its
// official Go client.
package meili

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"

	"github.com/utafrali/searchsync/internal/domain"
	"github.com/utafrali/searchsync/internal/index"
)

// indexNotFoundCode is the Meilisearch API error code a GetIndex probe
// returns for a missing index. Any other failure is propagated.
const indexNotFoundCode = "index_not_found"

// Client implements index.Indexer against a Meilisearch instance.
type Client struct {
	manager meilisearch.ServiceManager
	logger  *slog.Logger
}

// New creates a Meilisearch-backed indexer. The API key may be empty in
// development mode; configuration validation enforces it elsewhere.
func New(host, apiKey string, logger *slog.Logger) *Client {
	var opts []meilisearch.Option
	if apiKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(apiKey))
	}

	return &Client{
		manager: meilisearch.New(host, opts...),
		logger:  logger,
	}
}

// Ping checks whether the Meilisearch instance is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.manager.HealthWithContext(ctx); err != nil {
		return fmt.Errorf("meilisearch: health check: %w", err)
	}
	return nil
}

// CreateIndex creates the index with the given primary key.
func (c *Client) CreateIndex(ctx context.Context, name, primaryKey string) error {
	if primaryKey == "" {
		primaryKey = index.DefaultPrimaryKey
	}

	_, err := c.manager.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        name,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		return fmt.Errorf("meilisearch: create index %q: %w", name, err)
	}

	c.logger.Info("meilisearch index created",
		slog.String("index", name),
		slog.String("primary_key", primaryKey),
	)
	return nil
}

// UpsertIndex probes for the index by name and creates it with the
// configured primary key when the probe fails with index_not_found. Any
// other probe failure propagates.
func (c *Client) UpsertIndex(ctx context.Context, name string, settings index.Settings) error {
	_, err := c.manager.GetIndexWithContext(ctx, name)
	if err == nil {
		return nil
	}
	if !isIndexNotFound(err) {
		return fmt.Errorf("meilisearch: probe index %q: %w", name, err)
	}

	return c.CreateIndex(ctx, name, settings.PrimaryKey)
}

// UpdateSettings ensures the index exists, then applies the settings.
func (c *Client) UpdateSettings(ctx context.Context, name string, settings index.Settings) error {
	if err := c.UpsertIndex(ctx, name, settings); err != nil {
		return err
	}

	_, err := c.manager.Index(name).UpdateSettingsWithContext(ctx, toMeiliSettings(settings))
	if err != nil {
		return fmt.Errorf("meilisearch: update settings for %q: %w", name, err)
	}

	c.logger.Info("meilisearch index settings applied", slog.String("index", name))
	return nil
}

// AddDocuments upserts the documents by primary key.
func (c *Client) AddDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	_, err := c.manager.Index(name).AddDocumentsWithContext(ctx, docs, index.DefaultPrimaryKey)
	if err != nil {
		return fmt.Errorf("meilisearch: add documents to %q: %w", name, err)
	}

	c.logger.Debug("documents upserted",
		slog.String("index", name),
		slog.Int("count", len(docs)),
	)
	return nil
}

// ReplaceDocuments is identical to AddDocuments: Meilisearch's native
// document addition is an upsert by primary key and no insert-only path
// exists.
func (c *Client) ReplaceDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error {
	return c.AddDocuments(ctx, name, docs)
}

// DeleteDocument removes one document. Deleting an absent document is a
// no-op on the engine side, not an error.
func (c *Client) DeleteDocument(ctx context.Context, name, id string) error {
	_, err := c.manager.Index(name).DeleteDocumentWithContext(ctx, id)
	if err != nil {
		return fmt.Errorf("meilisearch: delete document %q from %q: %w", id, name, err)
	}

	c.logger.Debug("document deleted",
		slog.String("index", name),
		slog.String("id", id),
	)
	return nil
}

// DeleteDocuments removes a batch of documents by ID.
func (c *Client) DeleteDocuments(ctx context.Context, name string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.manager.Index(name).DeleteDocumentsWithContext(ctx, ids)
	if err != nil {
		return fmt.Errorf("meilisearch: delete documents from %q: %w", name, err)
	}
	return nil
}

// DeleteAllDocuments clears the index.
func (c *Client) DeleteAllDocuments(ctx context.Context, name string) error {
	_, err := c.manager.Index(name).DeleteAllDocumentsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("meilisearch: delete all documents from %q: %w", name, err)
	}

	c.logger.Info("index cleared", slog.String("index", name))
	return nil
}

// Search delegates the query verbatim to the engine.
func (c *Client) Search(ctx context.Context, name, query string, opts index.SearchOptions) (*index.SearchResult, error) {
	req := &meilisearch.SearchRequest{
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Sort:   opts.Sort,
	}
	if opts.Filter != "" {
		req.Filter = opts.Filter
	}

	resp, err := c.manager.Index(name).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, fmt.Errorf("meilisearch: search %q: %w", name, err)
	}

	hits := make([]map[string]any, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if doc, ok := hit.(map[string]any); ok {
			hits = append(hits, doc)
		}
	}

	return &index.SearchResult{
		Hits:               hits,
		EstimatedTotalHits: resp.EstimatedTotalHits,
		Limit:              resp.Limit,
		Offset:             resp.Offset,
		ProcessingTimeMs:   resp.ProcessingTimeMs,
		Query:              resp.Query,
	}, nil
}

// toMeiliSettings maps the engine-agnostic settings onto Meilisearch's
// settings object. Zero-valued fields are left unset so the engine keeps
// its defaults.
func toMeiliSettings(settings index.Settings) *meilisearch.Settings {
	out := &meilisearch.Settings{}
	if len(settings.SearchableAttributes) > 0 {
		out.SearchableAttributes = settings.SearchableAttributes
	}
	if len(settings.FilterableAttributes) > 0 {
		out.FilterableAttributes = settings.FilterableAttributes
	}
	if len(settings.SortableAttributes) > 0 {
		out.SortableAttributes = settings.SortableAttributes
	}
	if len(settings.RankingRules) > 0 {
		out.RankingRules = settings.RankingRules
	}
	if len(settings.DisplayedAttributes) > 0 {
		out.DisplayedAttributes = settings.DisplayedAttributes
	}
	return out
}

// isIndexNotFound reports whether err is the engine's distinguishable
// "index not found" failure.
func isIndexNotFound(err error) bool {
	var apiErr *meilisearch.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.MeilisearchApiError.Code == indexNotFoundCode
}
