package flotapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/observability/telemetry"
	"github.com/seu-repo/fleetops/internal/ports"
)

// Client executes single, paginated and alias-batched queries against
// the platform GraphQL endpoint. Alias batching is the system's
// substitute for a rate limiter: the platform has no batch endpoint, so
// N independent lookups are merged into one request with field aliases,
// keeping request count proportional to unique-entity count.
type Client struct {
	http   Doer
	url    string
	tokens ports.TokenSource
	log    *zap.Logger
}

// NewClient creates a GraphQL client using tokens for credentials.
func NewClient(graphqlURL string, httpClient Doer, tokens ports.TokenSource, log *zap.Logger) *Client {
	return &Client{
		http:   httpClient,
		url:    graphqlURL,
		tokens: tokens,
		log:    log,
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlErrorEntry struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []graphqlErrorEntry `json:"errors"`
}

// post issues one GraphQL request and returns the undigested envelope.
// kind labels the request in metrics and errors.
func (c *Client) post(ctx context.Context, kind, query string, variables map[string]interface{}) (*graphqlResponse, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.GraphQLRequestsTotal.WithLabelValues(kind, "transport_error").Inc()
		return nil, &domain.NetworkError{Operation: kind, Err: err}
	}
	defer resp.Body.Close()
	telemetry.GraphQLLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.GraphQLRequestsTotal.WithLabelValues(kind, "http_error").Inc()
		return nil, &domain.NetworkError{Operation: kind, StatusCode: resp.StatusCode}
	}

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		telemetry.GraphQLRequestsTotal.WithLabelValues(kind, "decode_error").Inc()
		return nil, &domain.NetworkError{Operation: kind, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	telemetry.GraphQLRequestsTotal.WithLabelValues(kind, "ok").Inc()
	return &gr, nil
}

// Execute runs one query and decodes data into out. A non-empty errors
// array is a failure even on HTTP 200.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	gr, err := c.post(ctx, "query", query, variables)
	if err != nil {
		return err
	}

	if len(gr.Errors) > 0 {
		return &domain.GraphQLError{Operation: "query", Messages: errorMessages(gr.Errors)}
	}

	if out == nil || len(gr.Data) == 0 || string(gr.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return &domain.NetworkError{Operation: "query", Err: fmt.Errorf("failed to decode data: %w", err)}
	}
	return nil
}

// ExecutePaginated drives fetch from page 1 until the page envelope
// reports the last page. The resulting stream is finite and never
// rewinds; fetch is responsible for accumulating records.
func (c *Client) ExecutePaginated(ctx context.Context, fetch func(ctx context.Context, page int) (Pagination, error)) error {
	for page := 1; ; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		if p.Pages <= 0 || page >= p.Pages {
			return nil
		}
	}
}

// ExecuteBatchedByAlias merges one sub-query per id into a single
// request, one alias per id. Per-alias failures are isolated: a GraphQL
// error carrying an alias path drops only that alias, and aliases
// resolving to null are simply absent from the result. Only a response
// with no usable data at all fails the whole batch.
func (c *Client) ExecuteBatchedByAlias(ctx context.Context, ids []string, buildSub func(alias, id string) string) (map[string]json.RawMessage, error) {
	if len(ids) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	aliasToID := make(map[string]string, len(ids))
	var b strings.Builder
	b.WriteString("query {\n")
	for i, id := range ids {
		alias := fmt.Sprintf("item%d", i)
		aliasToID[alias] = id
		b.WriteString("  ")
		b.WriteString(buildSub(alias, id))
		b.WriteString("\n")
	}
	b.WriteString("}")

	gr, err := c.post(ctx, "batch", b.String(), nil)
	if err != nil {
		return nil, err
	}

	failedAliases := make(map[string]bool)
	var batchMessages []string
	for _, e := range gr.Errors {
		if alias, ok := errorAlias(e); ok {
			failedAliases[alias] = true
			c.log.Warn("Batched sub-query failed",
				zap.String("alias", alias),
				zap.String("id", aliasToID[alias]),
				zap.String("message", e.Message),
			)
			continue
		}
		batchMessages = append(batchMessages, e.Message)
	}

	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		if len(batchMessages) == 0 {
			batchMessages = errorMessages(gr.Errors)
		}
		if len(batchMessages) == 0 {
			batchMessages = []string{"empty data in batch response"}
		}
		return nil, &domain.GraphQLError{Operation: "batch", Messages: batchMessages}
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(gr.Data, &data); err != nil {
		return nil, &domain.NetworkError{Operation: "batch", Err: fmt.Errorf("failed to decode data: %w", err)}
	}

	out := make(map[string]json.RawMessage, len(data))
	for alias, raw := range data {
		id, ok := aliasToID[alias]
		if !ok || failedAliases[alias] {
			continue
		}
		if len(raw) == 0 || string(raw) == "null" {
			// Missing entity: resolves to absent, never to an error.
			continue
		}
		out[id] = raw
	}
	return out, nil
}

func errorAlias(e graphqlErrorEntry) (string, bool) {
	if len(e.Path) == 0 {
		return "", false
	}
	s, ok := e.Path[0].(string)
	return s, ok
}

func errorMessages(entries []graphqlErrorEntry) []string {
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	return msgs
}
