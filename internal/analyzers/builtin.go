package analyzers

import (
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// RegisterBuiltins registers the stock analyzers. Call early in main();
// registration failures here are programming errors.
func RegisterBuiltins() {
	builtins := []Definition{
		{
			Key:         "broken-links",
			DisplayName: "Broken Link Checker",
			Path:        "/api/broken-links",
			DefaultOptions: map[string]any{
				"maxPages": 25,
			},
			Plan: func(options map[string]any) model.StepPlan {
				return model.StepPlan{
					{Label: "Connecting", Detail: "Contacting the target site"},
					{Label: "Crawling pages", Detail: "Collecting internal pages"},
					{Label: "Extracting links", Detail: "Gathering every link on each page"},
					{Label: "Checking links", Detail: "Requesting each link and recording failures"},
					{Label: "Scoring", Detail: "Weighing broken links by visibility"},
					{Label: "Building report", Detail: "Assembling findings"},
				}
			},
		},
		{
			Key:         "gdpr",
			DisplayName: "GDPR Compliance",
			Path:        "/api/gdpr",
			Plan: func(options map[string]any) model.StepPlan {
				return model.StepPlan{
					{Label: "Connecting", Detail: "Loading the target site"},
					{Label: "Scanning cookies", Detail: "Inspecting cookies set before consent"},
					{Label: "Checking consent banner", Detail: "Looking for a consent mechanism"},
					{Label: "Reviewing policies", Detail: "Locating privacy policy pages"},
					{Label: "Building report", Detail: "Assembling findings"},
				}
			},
		},
		{
			Key:         "local-seo",
			DisplayName: "Local SEO Audit",
			Path:        "/api/local-seo",
			Plan: func(options map[string]any) model.StepPlan {
				return model.StepPlan{
					{Label: "Connecting", Detail: "Loading the target site"},
					{Label: "Reading metadata", Detail: "Title, description and headings"},
					{Label: "Checking business data", Detail: "Name, address and phone markup"},
					{Label: "Checking structured data", Detail: "Schema.org and Open Graph"},
					{Label: "Scoring", Detail: "Weighing local ranking signals"},
					{Label: "Building report", Detail: "Assembling findings"},
				}
			},
		},
		{
			Key:         "mobile",
			DisplayName: "Mobile Experience Test",
			Path:        "/api/mobile",
			DefaultOptions: map[string]any{
				"devices": []any{"iphone-15", "pixel-8"},
			},
			// One step per selected device, bracketed by connect/report steps.
			Plan: func(options map[string]any) model.StepPlan {
				plan := model.StepPlan{
					{Label: "Connecting", Detail: "Loading the target site"},
					{Label: "Checking viewport", Detail: "Viewport meta and responsive layout"},
				}
				if devices, ok := options["devices"].([]any); ok {
					for _, d := range devices {
						if name, ok := d.(string); ok {
							plan = append(plan, model.Step{
								Label:  "Testing " + name,
								Detail: "Rendering on an emulated device",
							})
						}
					}
				}
				return append(plan, model.Step{Label: "Building report", Detail: "Assembling findings"})
			},
		},
		{
			Key:         "fonts",
			DisplayName: "Font Scanner",
			Path:        "/api/fonts",
			Plan: func(options map[string]any) model.StepPlan {
				return model.StepPlan{
					{Label: "Connecting", Detail: "Loading the target site"},
					{Label: "Scanning markup", Detail: "Google Fonts links and inline styles"},
					{Label: "Scanning stylesheets", Detail: "font-family declarations in linked CSS"},
					{Label: "Building report", Detail: "Deduplicating detected families"},
				}
			},
		},
	}

	for _, def := range builtins {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
