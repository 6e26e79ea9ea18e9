// Package webclient fetches target pages for the demo analyzers. Two
// backends are provided: a plain net/http client and a chromedp client for
// pages that only take shape after scripts run.
package webclient

import (
	"context"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when a request carries no User-Agent of its own.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Request is one page fetch.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is the outcome of a fetch.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// WebClient executes page fetches. Implementations are safe for concurrent
// use.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Backend names a registered backend. Empty selects "nethttp".
	Backend string `yaml:"backend"`

	// Timeout bounds one fetch. Zero selects 30s.
	Timeout time.Duration `yaml:"timeout"`

	// IdleAfter is how long the chromedp backend waits for the network to
	// stay quiet before snapshotting the page. Zero selects 2s.
	IdleAfter time.Duration `yaml:"idle_after"`

	// Headless controls whether the chromedp backend shows a browser.
	Headless *bool `yaml:"headless"`
}
