package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchsync/internal/domain"
	"github.com/utafrali/searchsync/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeResolver returns a fixed resolution regardless of input.
type fakeResolver struct {
	result []string
}

func (f *fakeResolver) Resolve(_ context.Context, subject domain.SubjectType, ids []string) []string {
	if subject == domain.SubjectProduct {
		return ids
	}
	return f.result
}

// fakeReader serves canned product graphs for requested IDs.
type fakeReader struct {
	products map[string]domain.Product
	err      error
	requests [][]string
}

func (f *fakeReader) Products(_ context.Context, ids []string) ([]domain.Product, error) {
	f.requests = append(f.requests, ids)
	if f.err != nil {
		return nil, f.err
	}

	if len(ids) == 0 {
		out := make([]domain.Product, 0, len(f.products))
		for _, p := range f.products {
			out = append(out, p)
		}
		return out, nil
	}

	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// recordingStore captures upserts and deletes; failures can be forced per
// product ID.
type recordingStore struct {
	mu      sync.Mutex
	upserts []domain.ProductDocument
	deletes []string
	failFor map[string]error
}

func (s *recordingStore) AddDocuments(_ context.Context, _ string, docs []domain.ProductDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if err := s.failFor[doc.ID]; err != nil {
			return err
		}
	}
	s.upserts = append(s.upserts, docs...)
	return nil
}

func (s *recordingStore) DeleteDocument(_ context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[id]; err != nil {
		return err
	}
	s.deletes = append(s.deletes, id)
	return nil
}

func publishedProduct() domain.Product {
	return domain.Product{
		ID:     "prod_1",
		Title:  "Wool Beanie",
		Status: domain.StatusPublished,
		Variants: []domain.ProductVariant{
			{
				ID:        "var_1",
				ProductID: "prod_1",
				InventoryItems: []domain.VariantInventoryItem{
					{InventoryItemID: "inv_1"},
				},
				InventoryLevels: []domain.InventoryLevel{
					{InventoryItemID: "inv_1", LocationID: "loc_1", StockedQuantity: 10, ReservedQuantity: 3},
				},
			},
		},
	}
}

func TestHandle_PublishedProductUpsertedWithComputedInventory(t *testing.T) {
	reader := &fakeReader{products: map[string]domain.Product{"prod_1": publishedProduct()}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1"},
	})
	require.NoError(t, err)

	require.Len(t, store.upserts, 1, "exactly one upsert")
	assert.Empty(t, store.deletes)

	doc := store.upserts[0]
	assert.Equal(t, "prod_1", doc.ID)
	require.Len(t, doc.Variants, 1)
	assert.Equal(t, 7, doc.Variants[0].InventoryQuantity)
}

func TestHandle_DraftProductDeletedNotUpserted(t *testing.T) {
	product := publishedProduct()
	product.Status = domain.StatusDraft

	reader := &fakeReader{products: map[string]domain.Product{"prod_1": product}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1"},
	})
	require.NoError(t, err)

	assert.Empty(t, store.upserts)
	assert.Equal(t, []string{"prod_1"}, store.deletes)
}

func TestHandle_ReservationEventResolvesToProduct(t *testing.T) {
	product := publishedProduct()
	product.ID = "prod_2"
	product.Variants[0].ProductID = "prod_2"

	reader := &fakeReader{products: map[string]domain.Product{"prod_2": product}}
	store := &recordingStore{}
	d := New(&fakeResolver{result: []string{"prod_2"}}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectReservationItem,
		IDs:     []string{"resitem_1"},
	})
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, "prod_2", store.upserts[0].ID)
}

func TestHandle_ResolvedButMissingProductRemovedFromIndex(t *testing.T) {
	reader := &fakeReader{products: map[string]domain.Product{}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_gone"},
	})
	require.NoError(t, err)

	assert.Empty(t, store.upserts)
	assert.Equal(t, []string{"prod_gone"}, store.deletes)
}

func TestHandle_OneProductFailureDoesNotAbortSiblings(t *testing.T) {
	good := publishedProduct()
	bad := publishedProduct()
	bad.ID = "prod_bad"

	reader := &fakeReader{products: map[string]domain.Product{
		"prod_1":   good,
		"prod_bad": bad,
	}}
	store := &recordingStore{failFor: map[string]error{"prod_bad": errors.New("index write refused")}}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1", "prod_bad"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prod_bad")

	require.Len(t, store.upserts, 1, "the healthy sibling still syncs")
	assert.Equal(t, "prod_1", store.upserts[0].ID)
}

func TestHandle_EmptyResolutionForNonProductSubjectIsNoOp(t *testing.T) {
	reader := &fakeReader{}
	store := &recordingStore{}
	d := New(&fakeResolver{result: nil}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectPriceList,
		IDs:     []string{"plist_1"},
	})
	require.NoError(t, err)

	assert.Empty(t, reader.requests, "no backend read without resolved products")
	assert.Empty(t, store.upserts)
	assert.Empty(t, store.deletes)
}

func TestHandle_ReaderFailurePropagates(t *testing.T) {
	reader := &fakeReader{err: errors.New("backend unavailable")}
	d := New(&fakeResolver{}, reader, &recordingStore{}, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestHandle_ZeroReviewsNeverEmitNaNRating(t *testing.T) {
	product := publishedProduct()
	product.Reviews = nil

	reader := &fakeReader{products: map[string]domain.Product{"prod_1": product}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.Handle(context.Background(), domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1"},
	})
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, 0.0, store.upserts[0].Rating)
}

func TestSyncAll_RebuildsEveryPublishedProduct(t *testing.T) {
	published := publishedProduct()
	draft := publishedProduct()
	draft.ID = "prod_draft"
	draft.Status = domain.StatusDraft

	reader := &fakeReader{products: map[string]domain.Product{
		"prod_1":     published,
		"prod_draft": draft,
	}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", newTestLogger())

	err := d.SyncAll(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, "prod_1", store.upserts[0].ID)
	assert.Equal(t, []string{"prod_draft"}, store.deletes)

	// The reader was asked for all products (no ID filter).
	require.Len(t, reader.requests, 1)
	assert.Empty(t, reader.requests[0])
}

func TestHandle_LogsCarryCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	reader := &fakeReader{products: map[string]domain.Product{"prod_1": publishedProduct()}}
	store := &recordingStore{}
	d := New(&fakeResolver{}, reader, store, "products", log)

	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	err := d.Handle(ctx, domain.ChangeEvent{
		Subject: domain.SubjectProduct,
		IDs:     []string{"prod_1"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"document upserted"`)
	assert.Contains(t, buf.String(), `"correlation_id":"corr-42"`)
}
