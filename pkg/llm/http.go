// Package llm provides the remote reasoning capabilities: a structured
// scam judge and a bounded reply generator, both backed by an OpenAI
// compatible chat-completions API (Groq), with deterministic fallbacks
// so the service keeps working offline.
package llm

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// sharedTransport pools connections across all LLM clients so repeated
// judge and reply calls reuse TCP connections and TLS sessions.
var sharedTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// NewHTTPClient creates an HTTP client on the shared transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}

// APIError carries the HTTP status and response body of a failed API
// call. Use errors.As() to extract it for programmatic handling.
type APIError struct {
	StatusCode int
	Body       string
	Service    string
}

func (e *APIError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// CheckResponse returns an APIError when the status is not 2xx. The body
// read is capped so a hostile upstream cannot exhaust memory.
func CheckResponse(resp *http.Response, service string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Service:    service,
	}
}
