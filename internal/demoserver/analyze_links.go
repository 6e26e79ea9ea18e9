package demoserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

// maxLinkChecks caps how many distinct links one demo scan will verify.
const maxLinkChecks = 20

func analyzeBrokenLinks(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error) {
	base, err := url.Parse(page.target)
	if err != nil {
		return nil, fmt.Errorf("parsing target: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string
	page.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	checked := 0
	var findings []model.Finding
	for _, link := range links {
		if checked >= maxLinkChecks {
			break
		}
		checked++
		if status, err := s.checkLink(link); err != nil {
			findings = append(findings, model.Finding{
				Category: "broken-link",
				Severity: "high",
				Message:  fmt.Sprintf("Link is unreachable: %v", err),
				URL:      link,
			})
		} else if status >= 400 {
			findings = append(findings, model.Finding{
				Category: "broken-link",
				Severity: "high",
				Message:  fmt.Sprintf("Link returned status %d", status),
				URL:      link,
			})
		}
	}

	score := 100.0
	if checked > 0 {
		score = 100 * float64(checked-len(findings)) / float64(checked)
	}

	env := &envelope{
		Score: score,
		Summary: map[string]any{
			"linksFound":   len(links),
			"linksChecked": checked,
			"brokenLinks":  len(findings),
		},
		Findings: findings,
	}
	if len(findings) > 0 {
		env.Recommendations = append(env.Recommendations,
			"Fix or remove the broken links listed in the findings",
			"Add automated link checking to your publishing workflow")
	}
	return env, nil
}

// checkLink issues a HEAD request with a short per-link deadline.
func (s *Server) checkLink(link string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := s.client.Do(ctx, &webclient.Request{Method: http.MethodHead, URL: link})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}
