package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffChunk is one changed region between two stored runs.
type DiffChunk struct {
	Type    string `json:"type"` // "added" | "removed"
	Content string `json:"content"`
}

// DiffResult compares two runs of the same analyzer/target pair.
type DiffResult struct {
	BaseID string      `json:"baseId"`
	HeadID string      `json:"headId"`
	Chunks []DiffChunk `json:"chunks"`
}

// Empty reports whether the two runs are identical after canonicalization.
func (d *DiffResult) Empty() bool { return len(d.Chunks) == 0 }

// Diff loads two stored runs and returns the semantic text diff of their
// payloads. Payload JSON is canonicalized (re-marshaled with sorted keys)
// first so key ordering differences don't show up as changes.
func (s *Store) Diff(ctx context.Context, baseID, headID string) (*DiffResult, error) {
	base, err := s.Get(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("history: loading base run %s: %w", baseID, err)
	}
	head, err := s.Get(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("history: loading head run %s: %w", headID, err)
	}
	if base.Analyzer != head.Analyzer {
		return nil, fmt.Errorf("history: cannot diff %s run against %s run", base.Analyzer, head.Analyzer)
	}

	baseText, err := canonicalJSON(base.Result.Raw)
	if err != nil {
		return nil, err
	}
	headText, err := canonicalJSON(head.Result.Raw)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(baseText, headText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	result := &DiffResult{BaseID: baseID, HeadID: headID}
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		result.Chunks = append(result.Chunks, DiffChunk{Type: chunkType, Content: d.Text})
	}
	return result, nil
}

// canonicalJSON round-trips raw JSON through a map so encoding/json emits
// keys in sorted order, with indentation for line-oriented diff output.
func canonicalJSON(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("history: canonicalizing payload: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("history: canonicalizing payload: %w", err)
	}
	return string(out), nil
}
