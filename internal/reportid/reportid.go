package reportid

import (
	"fmt"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/peternemser-ui/font-scanner-sub013/internal/urlutil"
)

// Compute derives the report identifier for one analysis run. It is a pure
// function of (analyzerKey, url, startedAt): the same triple always yields
// the same id, which is what the paywall and export layers correlate on.
// The URL is normalized first, so cosmetic spellings of the same target
// (trailing slash, host case, default port) share an id.
func Compute(analyzerKey, rawURL string, startedAt time.Time) (string, error) {
	if analyzerKey == "" {
		return "", fmt.Errorf("reportid: empty analyzer key")
	}
	normalized, err := urlutil.Normalize(rawURL)
	if err != nil {
		return "", fmt.Errorf("reportid: normalizing %q: %w", rawURL, err)
	}

	seed := analyzerKey + "|" + normalized + "|" + startedAt.UTC().Format(time.RFC3339)
	h1, h2 := murmur3.Sum128([]byte(seed))
	return fmt.Sprintf("%s-%016x%016x", analyzerKey, h1, h2), nil
}
