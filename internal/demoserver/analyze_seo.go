package demoserver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// phonePattern matches common phone number spellings in page text.
var phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}`)

func analyzeLocalSEO(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error) {
	var findings []model.Finding
	var recs []string
	score := 100.0

	title := strings.TrimSpace(page.doc.Find("title").First().Text())
	switch {
	case title == "":
		score -= 20
		findings = append(findings, model.Finding{
			Category: "metadata", Severity: "high",
			Message: "Page has no <title>",
		})
		recs = append(recs, "Add a descriptive title including your business name and location")
	case len(title) > 60:
		score -= 5
		findings = append(findings, model.Finding{
			Category: "metadata", Severity: "low",
			Message: fmt.Sprintf("Title is %d characters; search results truncate around 60", len(title)),
		})
	}

	desc, _ := page.doc.Find(`meta[name="description"]`).Attr("content")
	if strings.TrimSpace(desc) == "" {
		score -= 15
		findings = append(findings, model.Finding{
			Category: "metadata", Severity: "medium",
			Message: "Page has no meta description",
		})
		recs = append(recs, "Write a meta description mentioning your service area")
	}

	h1s := page.doc.Find("h1").Length()
	if h1s == 0 {
		score -= 10
		findings = append(findings, model.Finding{
			Category: "headings", Severity: "medium",
			Message: "Page has no <h1> heading",
		})
	} else if h1s > 1 {
		score -= 5
		findings = append(findings, model.Finding{
			Category: "headings", Severity: "low",
			Message: fmt.Sprintf("Page has %d <h1> headings; use exactly one", h1s),
		})
	}

	structured := page.doc.Find(`script[type="application/ld+json"]`).Length() > 0
	if !structured {
		score -= 20
		findings = append(findings, model.Finding{
			Category: "structured-data", Severity: "high",
			Message: "No schema.org structured data (JSON-LD) found",
		})
		recs = append(recs, "Add LocalBusiness structured data with name, address and hours")
	}

	hasPhone := phonePattern.MatchString(page.doc.Text()) ||
		page.doc.Find(`a[href^="tel:"]`).Length() > 0
	if !hasPhone {
		score -= 15
		findings = append(findings, model.Finding{
			Category: "business-data", Severity: "medium",
			Message: "No phone number detected on the page",
		})
		recs = append(recs, "Display your phone number as a tel: link")
	}

	ogTags := page.doc.Find(`meta[property^="og:"]`).Length()
	if ogTags == 0 {
		score -= 5
		findings = append(findings, model.Finding{
			Category: "metadata", Severity: "low",
			Message: "No Open Graph tags found; shared links will render poorly",
		})
	}

	if score < 0 {
		score = 0
	}
	return &envelope{
		Score: score,
		Summary: map[string]any{
			"title":          title,
			"h1Count":        h1s,
			"structuredData": structured,
			"phoneDetected":  hasPhone,
			"openGraphTags":  ogTags,
		},
		Findings:        findings,
		Recommendations: recs,
	}, nil
}
