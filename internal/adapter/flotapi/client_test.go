package flotapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/mocks"
)

func newGraphQLServer(t *testing.T, handle func(query string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token header, got %q", got)
		}
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, handle(req.Query))
	}))
}

func clientFor(server *httptest.Server) *Client {
	return NewClient(server.URL, server.Client(), &mocks.MockTokenSource{}, zap.NewNop())
}

func TestExecute_DecodesData(t *testing.T) {
	// Arrange
	server := newGraphQLServer(t, func(query string) string {
		return `{"data":{"companies":[{"id":"co-1","name":"Flota Norte"}]}}`
	})
	defer server.Close()

	var out companiesData

	// Act
	err := clientFor(server).Execute(context.Background(), companiesQuery, nil, &out)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out.Companies) != 1 || out.Companies[0].Name != "Flota Norte" {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

func TestExecute_GraphQLErrorsFailEvenOn200(t *testing.T) {
	// Arrange
	server := newGraphQLServer(t, func(query string) string {
		return `{"data":null,"errors":[{"message":"field not found"}]}`
	})
	defer server.Close()

	// Act
	err := clientFor(server).Execute(context.Background(), companiesQuery, nil, &companiesData{})

	// Assert
	var gqlErr *domain.GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %v", err)
	}
	if len(gqlErr.Messages) != 1 || gqlErr.Messages[0] != "field not found" {
		t.Errorf("unexpected messages: %v", gqlErr.Messages)
	}
}

func TestExecute_HTTPFailureIsNetworkError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	// Act
	err := clientFor(server).Execute(context.Background(), companiesQuery, nil, &companiesData{})

	// Assert
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", netErr.StatusCode)
	}
}

func TestExecutePaginated_DrainsAllPages(t *testing.T) {
	// Arrange
	var fetched []int
	client := clientFor(newGraphQLServer(t, func(string) string { return `{"data":{}}` }))

	// Act
	err := client.ExecutePaginated(context.Background(), func(ctx context.Context, page int) (Pagination, error) {
		fetched = append(fetched, page)
		return Pagination{Page: page, Pages: 3, Total: 250}, nil
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(fetched) != 3 || fetched[0] != 1 || fetched[2] != 3 {
		t.Errorf("expected pages 1..3 fetched in order, got %v", fetched)
	}
}

func TestExecutePaginated_StopsOnFetchError(t *testing.T) {
	// Arrange
	client := clientFor(newGraphQLServer(t, func(string) string { return `{"data":{}}` }))
	boom := errors.New("page exploded")

	// Act
	var calls int
	err := client.ExecutePaginated(context.Background(), func(ctx context.Context, page int) (Pagination, error) {
		calls++
		if page == 2 {
			return Pagination{}, boom
		}
		return Pagination{Page: page, Pages: 5}, nil
	})

	// Assert
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error surfaced, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected fetching to stop at the failing page, got %d calls", calls)
	}
}

func TestExecuteBatchedByAlias_OneRequestManyAliases(t *testing.T) {
	// Arrange
	var requests atomic.Int64
	server := newGraphQLServer(t, func(query string) string {
		requests.Add(1)
		if !strings.Contains(query, "item0:") || !strings.Contains(query, "item1:") {
			t.Errorf("expected aliased sub-queries, got %q", query)
		}
		return `{"data":{
			"item0":{"id":"asset-a","make":"Toyota"},
			"item1":{"id":"asset-b","make":"Fiat"}
		}}`
	})
	defer server.Close()

	// Act
	out, err := clientFor(server).ExecuteBatchedByAlias(context.Background(),
		[]string{"asset-a", "asset-b"},
		func(alias, id string) string { return assetSubQuery(alias, "co-1", id) })

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected one request for the batch, got %d", requests.Load())
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	var rec assetRecord
	if err := json.Unmarshal(out["asset-a"], &rec); err != nil || rec.Make != "Toyota" {
		t.Errorf("unexpected payload for asset-a: %s (%v)", out["asset-a"], err)
	}
}

func TestExecuteBatchedByAlias_AliasErrorDropsOnlyThatAlias(t *testing.T) {
	// Arrange
	server := newGraphQLServer(t, func(query string) string {
		return `{"data":{
			"item0":{"id":"asset-a"},
			"item1":null
		},"errors":[{"message":"asset unavailable","path":["item1"]}]}`
	})
	defer server.Close()

	// Act
	out, err := clientFor(server).ExecuteBatchedByAlias(context.Background(),
		[]string{"asset-a", "asset-b"},
		func(alias, id string) string { return assetSubQuery(alias, "co-1", id) })

	// Assert
	if err != nil {
		t.Fatalf("expected batch to survive alias failure, got %v", err)
	}
	if _, ok := out["asset-a"]; !ok {
		t.Error("expected asset-a present")
	}
	if _, ok := out["asset-b"]; ok {
		t.Error("expected failed alias asset-b absent")
	}
}

func TestExecuteBatchedByAlias_NullAliasMeansMissingEntity(t *testing.T) {
	// Arrange
	server := newGraphQLServer(t, func(query string) string {
		return `{"data":{"item0":null}}`
	})
	defer server.Close()

	// Act
	out, err := clientFor(server).ExecuteBatchedByAlias(context.Background(),
		[]string{"asset-gone"},
		func(alias, id string) string { return assetSubQuery(alias, "co-1", id) })

	// Assert
	if err != nil {
		t.Fatalf("missing entities must not error, got %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty result for missing entity, got %v", out)
	}
}

func TestExecuteBatchedByAlias_NullDataFailsWholeBatch(t *testing.T) {
	// Arrange
	server := newGraphQLServer(t, func(query string) string {
		return `{"data":null,"errors":[{"message":"rate limited"}]}`
	})
	defer server.Close()

	// Act
	_, err := clientFor(server).ExecuteBatchedByAlias(context.Background(),
		[]string{"asset-a"},
		func(alias, id string) string { return assetSubQuery(alias, "co-1", id) })

	// Assert
	var gqlErr *domain.GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError for empty batch data, got %v", err)
	}
}
