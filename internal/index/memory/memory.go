// Package memory is an in-memory implementation of the index contract.
// It backs tests and local development where no Meilisearch instance is
// available; matching is simple substring search over title and
// description, and filter expressions are not interpreted.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/searchsync/internal/domain"
	"github.com/utafrali/searchsync/internal/index"
)

// Indexer stores documents per index keyed by document ID. Thread-safe via
// sync.RWMutex.
type Indexer struct {
	mu      sync.RWMutex
	indexes map[string]*memIndex
}

type memIndex struct {
	primaryKey string
	settings   index.Settings
	docs       map[string]domain.ProductDocument
}

// New creates an empty in-memory indexer.
func New() *Indexer {
	return &Indexer{indexes: make(map[string]*memIndex)}
}

func (m *Indexer) index(name, primaryKey string) *memIndex {
	idx, ok := m.indexes[name]
	if !ok {
		if primaryKey == "" {
			primaryKey = index.DefaultPrimaryKey
		}
		idx = &memIndex{
			primaryKey: primaryKey,
			docs:       make(map[string]domain.ProductDocument),
		}
		m.indexes[name] = idx
	}
	return idx
}

// CreateIndex creates the index if absent.
func (m *Indexer) CreateIndex(_ context.Context, name, primaryKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index(name, primaryKey)
	return nil
}

// UpsertIndex creates the index if absent; existing indexes are untouched.
func (m *Indexer) UpsertIndex(_ context.Context, name string, settings index.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index(name, settings.PrimaryKey)
	return nil
}

// UpdateSettings ensures the index exists and stores the settings.
func (m *Indexer) UpdateSettings(_ context.Context, name string, settings index.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index(name, settings.PrimaryKey).settings = settings
	return nil
}

// AddDocuments upserts documents by ID.
func (m *Indexer) AddDocuments(_ context.Context, name string, docs []domain.ProductDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.index(name, "")
	for _, doc := range docs {
		idx.docs[doc.ID] = doc
	}
	return nil
}

// ReplaceDocuments is identical to AddDocuments, matching the engine's
// upsert semantics.
func (m *Indexer) ReplaceDocuments(ctx context.Context, name string, docs []domain.ProductDocument) error {
	return m.AddDocuments(ctx, name, docs)
}

// DeleteDocument removes a document; deleting an absent document is a
// no-op.
func (m *Indexer) DeleteDocument(_ context.Context, name, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.index(name, "").docs, id)
	return nil
}

// DeleteDocuments removes a batch of documents by ID.
func (m *Indexer) DeleteDocuments(_ context.Context, name string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.index(name, "")
	for _, id := range ids {
		delete(idx.docs, id)
	}
	return nil
}

// DeleteAllDocuments clears the index.
func (m *Indexer) DeleteAllDocuments(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.index(name, "").docs = make(map[string]domain.ProductDocument)
	return nil
}

// Search performs substring matching over title and description with
// offset/limit pagination. The filter string is accepted but not
// interpreted.
func (m *Indexer) Search(_ context.Context, name, query string, opts index.SearchOptions) (*index.SearchResult, error) {
	start := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexes[name]
	if !ok {
		return nil, fmt.Errorf("memory: index %q not found", name)
	}

	queryLower := strings.ToLower(query)

	matched := make([]domain.ProductDocument, 0)
	for _, doc := range idx.docs {
		if queryLower == "" ||
			strings.Contains(strings.ToLower(doc.Title), queryLower) ||
			strings.Contains(strings.ToLower(doc.Description), queryLower) {
			matched = append(matched, doc)
		}
	}

	// Stable hit order across calls so pagination is deterministic.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))

	offset := opts.Offset
	if offset > total {
		offset = total
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	end := offset + limit
	if end > total {
		end = total
	}

	hits := make([]map[string]any, 0, end-offset)
	for _, doc := range matched[offset:end] {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("memory: marshal hit: %w", err)
		}
		var hit map[string]any
		if err := json.Unmarshal(raw, &hit); err != nil {
			return nil, fmt.Errorf("memory: decode hit: %w", err)
		}
		hits = append(hits, hit)
	}

	return &index.SearchResult{
		Hits:               hits,
		EstimatedTotalHits: total,
		Limit:              limit,
		Offset:             offset,
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
		Query:              query,
	}, nil
}

// Document returns the stored document for an ID, for assertions in tests.
func (m *Indexer) Document(name, id string) (domain.ProductDocument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexes[name]
	if !ok {
		return domain.ProductDocument{}, false
	}
	doc, ok := idx.docs[id]
	return doc, ok
}

// Count returns the number of documents in an index.
func (m *Indexer) Count(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexes[name]
	if !ok {
		return 0
	}
	return len(idx.docs)
}
