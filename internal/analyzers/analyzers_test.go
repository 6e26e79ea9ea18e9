package analyzers_test

import (
	"strings"
	"testing"

	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

func init() {
	analyzers.RegisterBuiltins()
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	plan := func(map[string]any) model.StepPlan { return model.StepPlan{{Label: "a"}, {Label: "b"}} }

	tests := []struct {
		name string
		def  analyzers.Definition
	}{
		{"empty key", analyzers.Definition{Path: "/api/x", Plan: plan}},
		{"no path", analyzers.Definition{Key: "x", Plan: plan}},
		{"no plan", analyzers.Definition{Key: "x", Path: "/api/x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := analyzers.Register(tc.def); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	def, err := analyzers.Get("  GDPR ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if def.Key != "gdpr" {
		t.Errorf("key = %q, want gdpr", def.Key)
	}
}

func TestGetUnknownListsKnownKeys(t *testing.T) {
	t.Parallel()

	_, err := analyzers.Get("nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "gdpr") {
		t.Errorf("error %q does not list known analyzers", err)
	}
}

func TestBuiltinsRegistered(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"broken-links", "gdpr", "local-seo", "mobile", "fonts"} {
		def, err := analyzers.Get(key)
		if err != nil {
			t.Errorf("Get(%q): %v", key, err)
			continue
		}
		if def.Path == "" || def.DisplayName == "" {
			t.Errorf("%q is missing path or display name", key)
		}
		if plan := def.Plan(def.DefaultOptions); plan.Len() < 2 {
			t.Errorf("%q plan has %d steps, want at least 2", key, plan.Len())
		}
	}
}

func TestMobilePlanGrowsPerDevice(t *testing.T) {
	t.Parallel()

	def, err := analyzers.Get("mobile")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	base := def.Plan(map[string]any{"devices": []any{}})
	three := def.Plan(map[string]any{"devices": []any{"iphone-15", "pixel-8", "galaxy-s24"}})
	if three.Len() != base.Len()+3 {
		t.Errorf("plan lengths: base %d, three devices %d", base.Len(), three.Len())
	}

	found := false
	for i := 1; i <= three.Len(); i++ {
		if strings.Contains(three.At(i).Label, "galaxy-s24") {
			found = true
		}
	}
	if !found {
		t.Error("no step for galaxy-s24")
	}
}
