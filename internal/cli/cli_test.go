package cli_test

import (
	"testing"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/cli"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, a *cli.Args)
	}{
		{
			name: "minimal scan",
			args: []string{"-url", "https://example.com"},
			check: func(t *testing.T, a *cli.Args) {
				if a.URL != "https://example.com" {
					t.Errorf("URL = %q", a.URL)
				}
				if a.Analyzer != "broken-links" {
					t.Errorf("default analyzer = %q", a.Analyzer)
				}
				if a.Output != "pretty" {
					t.Errorf("default output = %q", a.Output)
				}
			},
		},
		{
			name: "full flags",
			args: []string{"-url", "https://example.com", "-analyzer", "gdpr", "-timeout", "30s", "-output", "json", "-export", "report.pdf"},
			check: func(t *testing.T, a *cli.Args) {
				if a.Analyzer != "gdpr" || a.Output != "json" || a.Export != "report.pdf" {
					t.Errorf("args = %+v", a)
				}
				if a.Timeout != 30*time.Second {
					t.Errorf("timeout = %v", a.Timeout)
				}
			},
		},
		{
			name: "serve without url",
			args: []string{"-serve"},
			check: func(t *testing.T, a *cli.Args) {
				if !a.Serve {
					t.Error("Serve not set")
				}
			},
		},
		{
			name:    "missing url",
			args:    []string{"-analyzer", "gdpr"},
			wantErr: true,
		},
		{
			name:    "bad output",
			args:    []string{"-url", "https://example.com", "-output", "xml"},
			wantErr: true,
		},
		{
			name:    "bad export extension",
			args:    []string{"-url", "https://example.com", "-export", "report.docx"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-nope"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := cli.ParseArgs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			if tc.check != nil {
				tc.check(t, a)
			}
		})
	}
}
