package demoserver

import (
	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

// Config holds demo backend settings.
type Config struct {
	// Addr is the listen address, e.g. ":9999".
	Addr string

	// RateLimit is allowed scans per second per client; Burst is the bucket
	// size.
	RateLimit float64
	Burst     int

	// Client configures how target pages are fetched.
	Client webclient.Config

	// Logger is optional.
	Logger interfaces.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:      ":9999",
		RateLimit: 2,
		Burst:     5,
	}
}
