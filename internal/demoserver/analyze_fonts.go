package demoserver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

var (
	familyParamPattern = regexp.MustCompile(`family=([^&]*)`)
	fontFamilyPattern  = regexp.MustCompile(`(?i)font-family\s*:\s*([^;}]+)`)
	cssImportPattern   = regexp.MustCompile(`@import\s+url\(['"]?([^'")]+)['"]?\)`)
)

var genericFamilies = map[string]struct{}{
	"serif": {}, "sans-serif": {}, "monospace": {}, "cursive": {}, "fantasy": {},
}

type detectedFont struct {
	Family string `json:"family"`
	Type   string `json:"type"` // "google" | "web"
	Source string `json:"source"`
}

func analyzeFonts(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error) {
	var fonts []detectedFont

	// Google Fonts link tags.
	page.doc.Find("link[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "fonts.googleapis.com") {
			return
		}
		for _, family := range familiesFromURL(href) {
			fonts = append(fonts, detectedFont{Family: family, Type: "google", Source: href})
		}
	})

	// Inline <style> blocks.
	page.doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		fonts = append(fonts, fontsFromCSS(sel.Text(), "inline-style")...)
	})

	// External stylesheets, fetched with a short per-sheet deadline.
	base, _ := url.Parse(page.target)
	page.doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || base == nil {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		cssURL := base.ResolveReference(ref).String()
		css, err := s.fetchStylesheet(cssURL)
		if err != nil {
			s.logger.Warn("fetching stylesheet failed",
				interfaces.F("url", cssURL), interfaces.F("error", err.Error()))
			return
		}
		fonts = append(fonts, fontsFromCSS(css, cssURL)...)
	})

	// Dedup on family+type, preserving first sighting.
	seen := make(map[string]struct{})
	var unique []detectedFont
	for _, f := range fonts {
		key := f.Family + "-" + f.Type
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, f)
	}

	var findings []model.Finding
	var recs []string
	score := 100.0
	if len(unique) > 4 {
		score -= float64(len(unique)-4) * 10
		findings = append(findings, model.Finding{
			Category: "fonts", Severity: "medium",
			Message: fmt.Sprintf("Page loads %d font families; each adds download weight", len(unique)),
		})
		recs = append(recs, "Trim the font palette to at most four families")
	}
	if score < 0 {
		score = 0
	}

	return &envelope{
		Score: score,
		Summary: map[string]any{
			"totalFonts": len(unique),
			"fonts":      unique,
		},
		Findings:        findings,
		Recommendations: recs,
	}, nil
}

func (s *Server) fetchStylesheet(cssURL string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := s.client.Do(ctx, &webclient.Request{URL: cssURL})
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("stylesheet returned status %d", resp.StatusCode)
	}
	return string(resp.Body), nil
}

// familiesFromURL pulls family names out of a Google Fonts URL's family
// parameter ("Open+Sans:400|Roboto" -> Open Sans, Roboto).
func familiesFromURL(href string) []string {
	m := familyParamPattern.FindStringSubmatch(href)
	if m == nil {
		return nil
	}
	var out []string
	for _, family := range strings.Split(strings.ReplaceAll(m[1], "+", " "), "|") {
		if name := strings.SplitN(family, ":", 2)[0]; name != "" {
			out = append(out, name)
		}
	}
	return out
}

// fontsFromCSS extracts families from font-family declarations and Google
// Fonts @imports inside a CSS blob.
func fontsFromCSS(css, source string) []detectedFont {
	var fonts []detectedFont
	for _, importURL := range cssImportPattern.FindAllStringSubmatch(css, -1) {
		if strings.Contains(importURL[1], "fonts.googleapis.com") {
			for _, family := range familiesFromURL(importURL[1]) {
				fonts = append(fonts, detectedFont{Family: family, Type: "google", Source: importURL[1]})
			}
		}
	}
	for _, decl := range fontFamilyPattern.FindAllStringSubmatch(css, -1) {
		for _, family := range strings.Split(decl[1], ",") {
			family = strings.Trim(strings.TrimSpace(family), `'"`)
			if family == "" {
				continue
			}
			if _, generic := genericFamilies[strings.ToLower(family)]; generic {
				continue
			}
			fonts = append(fonts, detectedFont{Family: family, Type: "web", Source: source})
		}
	}
	return fonts
}
