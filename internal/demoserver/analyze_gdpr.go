package demoserver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

var consentKeywords = []string{"cookie", "consent", "accept all", "gdpr"}

func analyzeGDPR(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error) {
	var findings []model.Finding
	var recs []string
	score := 100.0

	// Cookies set on the very first response arrive before any consent.
	preConsent := page.response.Headers.Values("Set-Cookie")
	if len(preConsent) > 0 {
		score -= 30
		findings = append(findings, model.Finding{
			Category: "cookies",
			Severity: "high",
			Message:  "Cookies are set before the visitor can consent",
		})
		recs = append(recs, "Defer all non-essential cookies until after consent is given")
	}

	bodyText := strings.ToLower(page.doc.Text())
	hasBanner := false
	for _, kw := range consentKeywords {
		if strings.Contains(bodyText, kw) {
			hasBanner = true
			break
		}
	}
	if !hasBanner {
		score -= 25
		findings = append(findings, model.Finding{
			Category: "consent",
			Severity: "medium",
			Message:  "No cookie consent mechanism was detected on the page",
		})
		recs = append(recs, "Add a consent banner that blocks trackers until accepted")
	}

	hasPolicy := false
	page.doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(sel.Text())
		href, _ := sel.Attr("href")
		if strings.Contains(text, "privacy") || strings.Contains(strings.ToLower(href), "privacy") {
			hasPolicy = true
			return false
		}
		return true
	})
	if !hasPolicy {
		score -= 25
		findings = append(findings, model.Finding{
			Category: "policy",
			Severity: "medium",
			Message:  "No privacy policy link was found",
		})
		recs = append(recs, "Link a privacy policy from every page, typically in the footer")
	}

	if !strings.HasPrefix(page.target, "https://") {
		score -= 20
		findings = append(findings, model.Finding{
			Category: "transport",
			Severity: "high",
			Message:  "Site is served over plain HTTP; personal data is not protected in transit",
		})
		recs = append(recs, "Serve the site over HTTPS and redirect HTTP traffic")
	}

	if score < 0 {
		score = 0
	}
	return &envelope{
		Score: score,
		Summary: map[string]any{
			"preConsentCookies": len(preConsent),
			"consentDetected":   hasBanner,
			"privacyPolicy":     hasPolicy,
		},
		Findings:        findings,
		Recommendations: recs,
	}, nil
}
