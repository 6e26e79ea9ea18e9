package model

import (
	"encoding/json"
	"strings"
	"time"
)

// ScanRequest describes one analysis run of a target URL.
type ScanRequest struct {
	// URL is the target to analyze. Must be non-empty after trimming.
	URL string `json:"url"`

	// Options carries analyzer-specific parameters (e.g. selected devices
	// for a mobile scan, crawl depth for broken links).
	Options map[string]any `json:"options,omitempty"`

	// StartedAt is generated client-side at dispatch time. Together with
	// the analyzer key and the normalized URL it anchors the ReportID.
	StartedAt time.Time `json:"startedAt"`
}

// WireBody builds the JSON body sent to an analyzer endpoint:
// {url, ...options, scanStartedAt}. Options keys named "url" or
// "scanStartedAt" cannot shadow the reserved fields.
func (r *ScanRequest) WireBody() ([]byte, error) {
	body := make(map[string]any, len(r.Options)+2)
	for k, v := range r.Options {
		body[k] = v
	}
	body["url"] = strings.TrimSpace(r.URL)
	if !r.StartedAt.IsZero() {
		body["scanStartedAt"] = r.StartedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(body)
}

// Step is one entry of a step plan.
type Step struct {
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

// StepPlan is the ordered list of progress labels shown during a scan.
// Steps are 1-indexed during execution; index 0 means "not started".
type StepPlan []Step

// Len returns the number of steps in the plan.
func (p StepPlan) Len() int { return len(p) }

// At returns the step for a 1-based index, or a zero Step if out of range.
func (p StepPlan) At(i int) Step {
	if i < 1 || i > len(p) {
		return Step{}
	}
	return p[i-1]
}
