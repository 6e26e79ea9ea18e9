package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Finding is one categorized observation inside an analysis result.
type Finding struct {
	Category string `json:"category"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
	URL      string `json:"url,omitempty"`
}

// AnalysisResult is the envelope for a backend analyzer response. The payload
// shape varies per analyzer, so the common reporting fields are lifted out and
// the full body is preserved verbatim in Raw for renderers and exporters that
// understand the analyzer-specific shape.
type AnalysisResult struct {
	Score           *float64       `json:"score,omitempty"`
	Grade           string         `json:"grade,omitempty"`
	Summary         map[string]any `json:"summary,omitempty"`
	Findings        []Finding      `json:"findings,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`

	// Optional fields echoed back by the backend.
	ReportID      string `json:"reportId,omitempty"`
	ScreenshotURL string `json:"screenshotUrl,omitempty"`
	ScanStartedAt string `json:"scanStartedAt,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ParseAnalysisResult decodes a 2xx analyzer response body. The raw body is
// kept on the envelope untouched.
func ParseAnalysisResult(body []byte) (*AnalysisResult, error) {
	var res AnalysisResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &ParseError{Err: err}
	}
	res.Raw = append(json.RawMessage(nil), body...)
	return &res, nil
}

// ReportContext is the per-report state handed to renderers and export
// handlers. It is scoped to one report's lifetime; nothing about a report
// lives in package-level state.
type ReportContext struct {
	ReportID  string
	Analyzer  string
	URL       string
	StartedAt time.Time
	Result    *AnalysisResult

	// Unlocked reflects the paywall state at render time. Gated report
	// sections are only rendered/exported when true.
	Unlocked bool
}

// Attributes returns the key/value pairs downstream export and paywall
// tooling reads off a completed report.
func (c *ReportContext) Attributes() map[string]string {
	attrs := map[string]string{
		"data-report-id":    c.ReportID,
		"data-sm-report-id": c.ReportID,
	}
	if c.Result != nil && c.Result.ScreenshotURL != "" {
		attrs["data-sm-screenshot-url"] = c.Result.ScreenshotURL
	}
	return attrs
}

// Title returns a short human label for the report, e.g. for export headers.
func (c *ReportContext) Title() string {
	return fmt.Sprintf("%s report for %s", c.Analyzer, c.URL)
}
