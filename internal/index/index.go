// Package index defines the engine-agnostic contract for the search index.
// Storage, ranking and query execution belong to the external engine; this
// package only shapes the calls.
package index

import (
	"context"

	"github.com/utafrali/searchsync/internal/domain"
)

// DefaultPrimaryKey is the document primary key field used when settings do
// not name one. Document identity is the product's own ID.
const DefaultPrimaryKey = "id"

// Settings is the per-index configuration applied at startup. Unknown
// engine-specific knobs are intentionally not modeled; the adapter maps
// these onto the engine's own settings object.
type Settings struct {
	PrimaryKey           string   `json:"primary_key,omitempty"`
	SearchableAttributes []string `json:"searchable_attributes,omitempty"`
	FilterableAttributes []string `json:"filterable_attributes,omitempty"`
	SortableAttributes   []string `json:"sortable_attributes,omitempty"`
	RankingRules         []string `json:"ranking_rules,omitempty"`
	DisplayedAttributes  []string `json:"displayed_attributes,omitempty"`
}

// SearchOptions are passed through to the engine verbatim.
type SearchOptions struct {
	Filter string
	Sort   []string
	Limit  int64
	Offset int64
}

// SearchResult is the engine's response, undecoded: hit documents are
// returned as the engine produced them.
type SearchResult struct {
	Hits               []map[string]any `json:"hits"`
	EstimatedTotalHits int64            `json:"estimated_total_hits"`
	Limit              int64            `json:"limit"`
	Offset             int64            `json:"offset"`
	ProcessingTimeMs   int64            `json:"processing_time_ms"`
	Query              string           `json:"query"`
}

// Indexer is the thin adapter over the external search engine's index API.
// All operations are network calls; none retry internally, and failures
// propagate to the caller. AddDocuments and ReplaceDocuments are
// semantically identical: both upsert by primary key, which makes repeated
// syncs of the same document idempotent. Deleting an absent document is not
// an error.
type Indexer interface {
	CreateIndex(ctx context.Context, name, primaryKey string) error
	UpsertIndex(ctx context.Context, name string, settings Settings) error
	UpdateSettings(ctx context.Context, name string, settings Settings) error
	AddDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error
	ReplaceDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error
	DeleteDocument(ctx context.Context, name, id string) error
	DeleteDocuments(ctx context.Context, name string, ids []string) error
	DeleteAllDocuments(ctx context.Context, name string) error
	Search(ctx context.Context, name, query string, opts SearchOptions) (*SearchResult, error)
}
