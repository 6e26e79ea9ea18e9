package analyzers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// Definition describes one analyzer: where to POST, how to label progress,
// and which options it understands. Step plans may depend on the request
// options (a mobile scan grows one step per selected device), so the plan is
// a function, built once before dispatch.
type Definition struct {
	// Key is the stable analyzer identifier ("broken-links", "gdpr", ...).
	Key string

	// DisplayName is the human label used in reports and progress UIs.
	DisplayName string

	// Path is the endpoint path relative to the analyzer base URL,
	// e.g. "/api/broken-links".
	Path string

	// DefaultOptions are merged under the request options at dispatch.
	DefaultOptions map[string]any

	// Plan builds the fixed step plan for a request's options. Must return
	// at least two steps: the dispatch step and the completion step.
	Plan func(options map[string]any) model.StepPlan
}

var (
	mu   sync.RWMutex
	defs = map[string]Definition{}
)

// Register adds or replaces an analyzer definition. Key matching is
// case-insensitive.
func Register(def Definition) error {
	if def.Key == "" {
		return fmt.Errorf("analyzers: empty key")
	}
	if def.Path == "" {
		return fmt.Errorf("analyzers: %q has no endpoint path", def.Key)
	}
	if def.Plan == nil {
		return fmt.Errorf("analyzers: %q has no step plan", def.Key)
	}
	mu.Lock()
	defer mu.Unlock()
	defs[strings.ToLower(def.Key)] = def
	return nil
}

// Get returns the definition for key, or an error listing known analyzers.
func Get(key string) (Definition, error) {
	mu.RLock()
	def, ok := defs[strings.ToLower(strings.TrimSpace(key))]
	mu.RUnlock()
	if !ok {
		return Definition{}, fmt.Errorf("analyzers: unknown analyzer %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return def, nil
}

// Keys returns the registered analyzer keys, sorted.
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(defs))
	for k := range defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
