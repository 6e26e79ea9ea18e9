// Package cli parses command-line arguments for the scan runner.
package cli

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// Args are the command-line arguments that control a single scan run.
type Args struct {
	// URL is the site to analyze.
	URL string

	// Analyzer is the analyzer key (broken-links, gdpr, local-seo,
	// mobile, fonts).
	Analyzer string

	// ConfigPath is an optional YAML config file.
	ConfigPath string

	// Timeout overrides the configured scan timeout; 0 means "use config".
	Timeout time.Duration

	// Output selects the result rendering: "pretty" or "json".
	Output string

	// Export, if set, writes the report to this file path. The format is
	// picked from the extension (.pdf or .csv).
	Export string

	// Serve starts the gateway server instead of running a single scan.
	Serve bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns Args. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("scanfield", flag.ContinueOnError)
	var (
		url        = fs.String("url", "", "URL to analyze (required unless -serve)")
		analyzer   = fs.String("analyzer", "broken-links", "Analyzer: broken-links|gdpr|local-seo|mobile|fonts")
		configPath = fs.String("config", "", "Path to YAML config file")
		timeout    = fs.Duration("timeout", 0, "Scan timeout override (0=use config)")
		output     = fs.String("output", "pretty", "Result output: pretty|json")
		export     = fs.String("export", "", "Write the report to this .pdf or .csv file")
		serve      = fs.Bool("serve", false, "Run the gateway server instead of a single scan")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	a := &Args{
		URL:        strings.TrimSpace(*url),
		Analyzer:   *analyzer,
		ConfigPath: *configPath,
		Timeout:    *timeout,
		Output:     *output,
		Export:     *export,
		Serve:      *serve,
		RawArgs:    args,
	}

	if !a.Serve && a.URL == "" {
		return nil, fmt.Errorf("missing required -url argument")
	}
	switch a.Output {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("invalid -output %q: must be pretty or json", a.Output)
	}
	if a.Export != "" && !strings.HasSuffix(a.Export, ".pdf") && !strings.HasSuffix(a.Export, ".csv") {
		return nil, fmt.Errorf("invalid -export %q: must end in .pdf or .csv", a.Export)
	}
	return a, nil
}
