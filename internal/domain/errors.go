package domain

import (
	"fmt"
	"strings"
)

// Error taxonomy for the acquisition client.
//
// AuthenticationError is fatal: a run cannot continue without a token.
// NetworkError and GraphQLError are fatal for enumeration calls and
// recoverable (skip-and-count) for per-driver calls; the orchestrator
// decides, not the component that raised them. A missing asset or toll
// record is not an error at all and resolves to an empty value.

// AuthenticationError reports a failed credential exchange against the
// platform auth endpoint.
type AuthenticationError struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed: status %d: %s", e.StatusCode, e.Reason)
	}
	return "authentication failed: " + e.Reason
}

// NetworkError reports a transport failure or non-2xx response from the
// platform GraphQL endpoint.
type NetworkError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// GraphQLError reports a response whose errors array is non-empty, even
// when the HTTP status is 200.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: graphql errors: %s", e.Operation, strings.Join(e.Messages, "; "))
}
