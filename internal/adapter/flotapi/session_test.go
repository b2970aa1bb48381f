package flotapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/pkg/config"
)

func newAuthServer(t *testing.T, exchanges *atomic.Int64, expiresIn int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("invalid form body: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "password" {
			t.Errorf("expected password grant, got %q", got)
		}
		n := exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-" + string(rune('a'+n-1)),
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}))
}

func sessionFor(server *httptest.Server) *SessionManager {
	return NewSessionManager(config.PlatformConfig{
		AuthURL:  server.URL,
		ClientID: "cid", ClientSecret: "secret",
		Username: "fleet-user", Password: "fleet-pass",
	}, server.Client(), zap.NewNop())
}

func TestValidToken_ReusedUntilNearExpiry(t *testing.T) {
	// Arrange
	var exchanges atomic.Int64
	server := newAuthServer(t, &exchanges, 3600)
	defer server.Close()

	session := sessionFor(server)
	clock := time.Date(2024, 7, 17, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return clock }

	// Act
	first, err := session.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	clock = clock.Add(30 * time.Minute)
	second, err := session.ValidToken(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Errorf("expected cached token to be reused, got %q then %q", first, second)
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("expected 1 credential exchange, got %d", got)
	}
}

func TestValidToken_RenewsInsideExpiryMargin(t *testing.T) {
	// Arrange
	var exchanges atomic.Int64
	server := newAuthServer(t, &exchanges, 3600)
	defer server.Close()

	session := sessionFor(server)
	clock := time.Date(2024, 7, 17, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return clock }

	first, err := session.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Act: 3600s lifetime minus the 5 minute margin puts 12:56 past the
	// renewal point.
	clock = clock.Add(56 * time.Minute)
	second, err := session.ValidToken(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first == second {
		t.Error("expected a fresh token inside the expiry margin")
	}
	if got := exchanges.Load(); got != 2 {
		t.Errorf("expected 2 credential exchanges, got %d", got)
	}
}

func TestValidToken_ConcurrentCallersShareOneExchange(t *testing.T) {
	// Arrange
	var exchanges atomic.Int64
	server := newAuthServer(t, &exchanges, 3600)
	defer server.Close()

	session := sessionFor(server)

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := session.ValidToken(context.Background()); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	// Assert
	if got := exchanges.Load(); got != 1 {
		t.Errorf("expected concurrent callers to share 1 exchange, got %d", got)
	}
}

func TestValidToken_RejectedCredentials(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	session := sessionFor(server)

	// Act
	_, err := session.ValidToken(context.Background())

	// Assert
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", authErr.StatusCode)
	}

	// A failed exchange must not leave a stale session behind.
	if session.token != "" {
		t.Error("expected no cached token after rejected credentials")
	}
}
