package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchsync/pkg/httpclient"
)

func TestGraphClient_QueryDecodesDataList(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graph", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"prod_1"},{"id":"prod_2"}]}`))
	}))
	defer srv.Close()

	client := NewGraphClient(httpclient.New(httpclient.DefaultConfig()), srv.URL+"/", "sk_test")

	var rows []struct {
		ID string `json:"id"`
	}
	err := client.Query(context.Background(), Request{
		Entity:  "product",
		Fields:  []string{"id"},
		Filters: map[string]any{"id": []string{"prod_1", "prod_2"}},
	}, &rows)
	require.NoError(t, err)

	assert.Equal(t, "product", got.Entity)
	require.Len(t, rows, 2)
	assert.Equal(t, "prod_1", rows[0].ID)
}

func TestGraphClient_MissingDataDecodesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewGraphClient(httpclient.New(httpclient.DefaultConfig()), srv.URL, "")

	var rows []struct{}
	err := client.Query(context.Background(), Request{Entity: "review"}, &rows)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGraphClient_ErrorNamesEntity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewGraphClient(httpclient.New(httpclient.DefaultConfig()), srv.URL, "bad")

	var rows []struct{}
	err := client.Query(context.Background(), Request{Entity: "price_list"}, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"price_list"`)
}
