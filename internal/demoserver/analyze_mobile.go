package demoserver

import (
	"fmt"
	"strings"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

func analyzeMobile(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error) {
	var findings []model.Finding
	var recs []string
	score := 100.0

	viewport, _ := page.doc.Find(`meta[name="viewport"]`).Attr("content")
	if viewport == "" {
		score -= 35
		findings = append(findings, model.Finding{
			Category: "viewport", Severity: "critical",
			Message: "Page has no viewport meta tag; mobile browsers will render the desktop layout",
		})
		recs = append(recs, `Add <meta name="viewport" content="width=device-width, initial-scale=1">`)
	} else if !strings.Contains(viewport, "width=device-width") {
		score -= 15
		findings = append(findings, model.Finding{
			Category: "viewport", Severity: "medium",
			Message: "Viewport meta tag does not use width=device-width",
		})
	}

	// Attribute-based fixed widths on structural elements break small screens.
	fixedWidth := page.doc.Find("table[width], img[width], div[width]").Length()
	if fixedWidth > 0 {
		score -= 10
		findings = append(findings, model.Finding{
			Category: "layout", Severity: "medium",
			Message: fmt.Sprintf("%d elements declare fixed pixel widths", fixedWidth),
		})
		recs = append(recs, "Replace fixed element widths with fluid or max-width styles")
	}

	// Crowded links are a proxy for tap targets that are hard to hit.
	linkCount := page.doc.Find("a").Length()
	if linkCount > 100 {
		score -= 10
		findings = append(findings, model.Finding{
			Category: "tap-targets", Severity: "low",
			Message: fmt.Sprintf("Page has %d links; dense link clusters are hard to tap", linkCount),
		})
	}

	// Each requested device is reported individually so the client's
	// per-device step plan lines up with something real.
	devices := deviceNames(req.Options)
	deviceResults := make(map[string]any, len(devices))
	for _, d := range devices {
		status := "pass"
		if viewport == "" {
			status = "fail"
		}
		deviceResults[d] = status
	}

	if score < 0 {
		score = 0
	}
	return &envelope{
		Score: score,
		Summary: map[string]any{
			"viewport":    viewport,
			"fixedWidth":  fixedWidth,
			"linkCount":   linkCount,
			"devices":     deviceResults,
			"renderedVia": s.cfg.Client.Backend,
		},
		Findings:        findings,
		Recommendations: recs,
	}, nil
}

func deviceNames(options map[string]any) []string {
	raw, ok := options["devices"].([]any)
	if !ok {
		return []string{"iphone-15", "pixel-8"}
	}
	var out []string
	for _, d := range raw {
		if name, ok := d.(string); ok {
			out = append(out, name)
		}
	}
	return out
}
