// Package render holds the stock ReportRenderer strategies. Renderers are
// pure presentation: they read a ReportContext and write somewhere, they
// never mutate report or paywall state.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// JSONRenderer writes the report envelope plus the downstream correlation
// attributes as one JSON document. Used by the CLI's --output json mode and
// by the gateway result events.
type JSONRenderer struct {
	Out    io.Writer
	Indent bool
}

func (r *JSONRenderer) Render(rc *model.ReportContext) error {
	doc := struct {
		ReportID   string            `json:"reportId"`
		Analyzer   string            `json:"analyzer"`
		URL        string            `json:"url"`
		StartedAt  string            `json:"startedAt"`
		Unlocked   bool              `json:"unlocked"`
		Attributes map[string]string `json:"attributes"`
		Result     json.RawMessage   `json:"result"`
	}{
		ReportID:   rc.ReportID,
		Analyzer:   rc.Analyzer,
		URL:        rc.URL,
		StartedAt:  rc.StartedAt.Format(time.RFC3339),
		Unlocked:   rc.Unlocked,
		Attributes: rc.Attributes(),
		Result:     rc.Result.Raw,
	}
	enc := json.NewEncoder(r.Out)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("render: encoding report: %w", err)
	}
	return nil
}
