package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/utafrali/searchsync/pkg/httpclient"
)

// GraphClient talks to the commerce backend's graph query endpoint over
// HTTP. It satisfies Querier.
type GraphClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

// NewGraphClient creates a graph client for the backend at baseURL.
func NewGraphClient(http *httpclient.Client, baseURL, apiKey string) *GraphClient {
	return &GraphClient{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// graphResponse is the backend's envelope around query results.
type graphResponse struct {
	Data json.RawMessage `json:"data"`
}

// Query executes the graph request and decodes the data list into out.
func (c *GraphClient) Query(ctx context.Context, req Request, out any) error {
	var resp graphResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/graph", c.apiKey, req, &resp); err != nil {
		return fmt.Errorf("graph query %q: %w", req.Entity, err)
	}

	if len(resp.Data) == 0 {
		resp.Data = json.RawMessage("[]")
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("graph query %q: decode data: %w", req.Entity, err)
	}
	return nil
}

// Ping verifies the backend graph endpoint is reachable by issuing a
// minimal query.
func (c *GraphClient) Ping(ctx context.Context) error {
	var rows []struct {
		ID string `json:"id"`
	}
	return c.Query(ctx, Request{
		Entity:  "product",
		Fields:  []string{"id"},
		Filters: map[string]any{"id": []string{"ping"}},
	}, &rows)
}
