package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/export"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

func sampleReport(t *testing.T, unlocked bool) *model.ReportContext {
	t.Helper()
	res, err := model.ParseAnalysisResult([]byte(`{
		"score": 55,
		"grade": "D",
		"findings": [
			{"category": "cookies", "severity": "critical", "message": "cookies set before consent"},
			{"category": "policy", "severity": "warning", "message": "privacy policy not linked", "url": "https://example.com"}
		],
		"recommendations": ["Add a consent banner", "Link the privacy policy in the footer"]
	}`))
	if err != nil {
		t.Fatalf("ParseAnalysisResult: %v", err)
	}
	return &model.ReportContext{
		ReportID:  "gdpr-77aa",
		Analyzer:  "gdpr",
		URL:       "https://example.com",
		StartedAt: time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC),
		Result:    res,
		Unlocked:  unlocked,
	}
}

func TestCSVGatesRecommendations(t *testing.T) {
	t.Parallel()

	var locked bytes.Buffer
	if err := export.CSV(sampleReport(t, false), &locked); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	rows, err := csv.NewReader(&locked).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	// Header plus two findings, no recommendation rows.
	if len(rows) != 3 {
		t.Fatalf("locked rows = %d, want 3", len(rows))
	}
	for _, row := range rows[1:] {
		if row[0] != "finding" {
			t.Errorf("locked export has %q row", row[0])
		}
	}

	var unlocked bytes.Buffer
	if err := export.CSV(sampleReport(t, true), &unlocked); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	rows, err = csv.NewReader(&unlocked).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("unlocked rows = %d, want 5", len(rows))
	}
	recs := 0
	for _, row := range rows[1:] {
		if row[0] == "recommendation" {
			recs++
		}
	}
	if recs != 2 {
		t.Errorf("recommendation rows = %d, want 2", recs)
	}
}

func TestCSVColumns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := export.CSV(sampleReport(t, false), &buf); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	want := []string{"type", "category", "severity", "message", "url"}
	for i, col := range want {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][3] != "cookies set before consent" {
		t.Errorf("message column = %q", rows[1][3])
	}
}

func TestPDFProducesDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := export.PDF(sampleReport(t, true), &buf); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Errorf("output does not start with a PDF header: %q", buf.String()[:16])
	}
	if buf.Len() < 500 {
		t.Errorf("pdf suspiciously small: %d bytes", buf.Len())
	}
}
