package server

import (
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/paywall"
)

// Config holds gateway settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// AnalyzerBaseURL is where the analyzer endpoints live, e.g.
	// "http://localhost:9999".
	AnalyzerBaseURL string

	// Timeout bounds one analyzer call. Zero selects the client default.
	Timeout time.Duration

	// StepInterval overrides the cosmetic progress cadence. Zero selects
	// the lifecycle default.
	StepInterval time.Duration

	// StorageDir is where the report archive and sqlite unlock store live.
	StorageDir string

	// Paywall selects the unlock store backend.
	Paywall paywall.Config

	// Logger is optional.
	Logger interfaces.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		AnalyzerBaseURL: "http://localhost:9999",
		StorageDir:      "./data",
	}
}
