// Package marketplace is the client for the remote parts marketplace.
//
// The marketplace exposes a single query endpoint taking a structured
// query/variables/operation triple over an authenticated transport. This
// package covers everything spoken against that endpoint: the query
// executor, the VIN-to-vehicle resolver, the free-text-to-part-type
// resolver, and the concurrent per-vendor fan-out search.
//
// Authentication is borrowed per call: the caller passes a
// [session.Credential] obtained from the session manager, and this package
// never stores it.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/torqueline/partsource/pkg/cache"
	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/session"
)

// Client issues structured queries against the marketplace endpoint.
type Client struct {
	http     *http.Client
	endpoint string
	cache    cache.Cache
	logger   *log.Logger
}

// NewClient creates a marketplace client.
// The cache is used only for part-type suggestion lookups; pass a NullCache
// to disable. Outbound calls carry no deadline of their own; cancellation
// comes from the caller's context.
func NewClient(endpoint string, c cache.Cache, logger *log.Logger) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		http:     &http.Client{},
		endpoint: endpoint,
		cache:    c,
		logger:   logger,
	}
}

type queryRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type queryError struct {
	Message string `json:"message"`
}

type queryResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []queryError    `json:"errors"`
}

// Execute POSTs one structured query with the borrowed credential and
// returns the raw data payload.
//
// Failure classification drives the pipeline's retry policy, so it is
// strict: 401/403 map to SESSION_EXPIRED (the only retryable code), any
// other non-success transport status maps to NETWORK_ERROR, and a
// transport-successful response carrying an embedded error list maps to
// SEARCH_FAILED with the first error's message. Callers must never retry
// SEARCH_FAILED: a malformed or unsupported query stays broken on re-send.
func (c *Client) Execute(ctx context.Context, operation, query string, variables map[string]any, cred session.Credential) (json.RawMessage, error) {
	body, err := json.Marshal(queryRequest{
		Query:         query,
		Variables:     variables,
		OperationName: operation,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s query", operation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build %s request", operation)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cred.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "%s request failed", operation)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.New(errors.ErrCodeSessionExpired, "marketplace rejected session (status %d)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeNetwork, "%s returned status %d", operation, resp.StatusCode)
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "malformed %s response", operation)
	}

	if len(envelope.Errors) > 0 {
		return nil, errors.New(errors.ErrCodeSearchFailed, "%s", envelope.Errors[0].Message)
	}

	return envelope.Data, nil
}
