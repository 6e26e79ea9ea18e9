// Package export turns a completed report into downloadable artifacts.
// Exports honor the paywall: gated sections are omitted from locked reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// PDF writes a report summary document.
func PDF(rc *model.ReportContext, w io.Writer) error {
	res := rc.Result
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(rc.Title(), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, rc.Title(), "", "L", false)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Scanned %s", rc.StartedAt.Format(time.RFC1123)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Report ID: %s", rc.ReportID), "", 1, "L", false, 0, "")
	doc.Ln(4)

	if res.Score != nil {
		doc.SetFont("Helvetica", "B", 13)
		line := fmt.Sprintf("Score: %.0f", *res.Score)
		if res.Grade != "" {
			line += fmt.Sprintf("  (Grade %s)", res.Grade)
		}
		doc.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
		doc.Ln(2)
	}

	if len(res.Findings) > 0 {
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 7, "Findings", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, f := range res.Findings {
			sev := f.Severity
			if sev == "" {
				sev = "info"
			}
			doc.MultiCell(0, 5.5, fmt.Sprintf("[%s] %s", sev, f.Message), "", "L", false)
		}
		doc.Ln(2)
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 7, "Recommendations", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	if rc.Unlocked {
		for _, rec := range res.Recommendations {
			doc.MultiCell(0, 5.5, "- "+rec, "", "L", false)
		}
	} else {
		doc.SetFont("Helvetica", "I", 10)
		doc.MultiCell(0, 5.5, fmt.Sprintf(
			"%d recommendations are available in the unlocked report.", len(res.Recommendations)), "", "L", false)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("export: writing pdf: %w", err)
	}
	return nil
}

// CSV writes findings (and, for unlocked reports, recommendations) as rows.
func CSV(rc *model.ReportContext, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "category", "severity", "message", "url"}); err != nil {
		return fmt.Errorf("export: writing csv header: %w", err)
	}
	for _, f := range rc.Result.Findings {
		if err := cw.Write([]string{"finding", f.Category, f.Severity, f.Message, f.URL}); err != nil {
			return fmt.Errorf("export: writing csv row: %w", err)
		}
	}
	if rc.Unlocked {
		for _, rec := range rc.Result.Recommendations {
			if err := cw.Write([]string{"recommendation", "", "", rec, ""}); err != nil {
				return fmt.Errorf("export: writing csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
