package flotapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/observability/telemetry"
	"github.com/seu-repo/fleetops/pkg/config"
)

// Doer is the outbound HTTP client surface; satisfied by *http.Client
// and by the circuit-breaker wrapper.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// tokenExpiryMargin renews the session before the platform actually
// invalidates it, so no request is ever issued with a token about to
// expire mid-flight.
const tokenExpiryMargin = 5 * time.Minute

// SessionManager owns the one active platform session. Components never
// read the token directly; they go through ValidToken, which
// re-authenticates transparently when the cached token is near expiry.
//
// The whole exchange runs under the mutex, so concurrent callers before
// the first token issuance share one credential exchange.
type SessionManager struct {
	http    Doer
	authURL string

	clientID     string
	clientSecret string
	username     string
	password     string

	now func() time.Time
	log *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewSessionManager creates a session manager for the given platform
// credentials.
func NewSessionManager(cfg config.PlatformConfig, httpClient Doer, log *zap.Logger) *SessionManager {
	return &SessionManager{
		http:         httpClient,
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		username:     cfg.Username,
		password:     cfg.Password,
		now:          time.Now,
		log:          log,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ValidToken returns a token guaranteed to outlive the expiry margin,
// performing a credential exchange first if needed. Authentication
// failure is fatal to the run: it returns a *domain.AuthenticationError
// and retains no prior session.
func (s *SessionManager) ValidToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	token, err := s.authenticate(ctx)
	if err != nil {
		s.token = ""
		s.expiresAt = time.Time{}
		telemetry.AuthExchangesTotal.WithLabelValues("error").Inc()
		return "", err
	}

	telemetry.AuthExchangesTotal.WithLabelValues("ok").Inc()
	return token, nil
}

// authenticate runs the password-grant exchange. Caller holds s.mu.
func (s *SessionManager) authenticate(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"username":      {s.username},
		"password":      {s.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.AuthenticationError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", &domain.AuthenticationError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.AuthenticationError{
			StatusCode: resp.StatusCode,
			Reason:     strings.TrimSpace(string(body)),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &domain.AuthenticationError{Reason: "malformed token response: " + err.Error()}
	}
	if tr.AccessToken == "" {
		return "", &domain.AuthenticationError{Reason: "token response without access_token"}
	}

	s.token = tr.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin)

	s.log.Info("Platform session renewed",
		zap.Time("expires_at", s.expiresAt),
	)

	return s.token, nil
}
