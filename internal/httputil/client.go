// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the PubMed and
// summarizer clients.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// DefaultTimeout is used when HTTPConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const (
	// maxResponseBytes bounds how much of a response body is read. An
	// EFetch batch of a few hundred records stays well below this.
	maxResponseBytes = 64 << 20

	// maxErrorBody is the length of the body excerpt kept in StatusError.
	maxErrorBody = 512
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// NewClient returns an http.Client with the configured timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Do sends req with the given User-Agent and returns the response body.
// A nil client uses http.DefaultClient. Responses outside the 2xx range
// are drained and returned as *StatusError with a short body excerpt.
func Do(client *http.Client, req *http.Request, userAgent string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	return body, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
