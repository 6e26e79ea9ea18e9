package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/history"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/testutil"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStore(t.TempDir(), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func reportContext(t *testing.T, id, url, payload string, startedAt time.Time) *model.ReportContext {
	t.Helper()
	res, err := model.ParseAnalysisResult([]byte(payload))
	if err != nil {
		t.Fatalf("ParseAnalysisResult: %v", err)
	}
	return &model.ReportContext{
		ReportID:  id,
		Analyzer:  "gdpr",
		URL:       url,
		StartedAt: startedAt,
		Result:    res,
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rc := reportContext(t, "gdpr-0001", "https://example.com", `{"score": 60, "grade": "C"}`, started)
	if err := store.Save(ctx, rc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	run, err := store.Get(ctx, "gdpr-0001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Analyzer != "gdpr" || run.URL != "https://example.com" {
		t.Errorf("run = %+v", run)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("startedAt = %v, want %v", run.StartedAt, started)
	}
	if run.Result == nil || run.Result.Grade != "C" {
		t.Errorf("payload not restored: %+v", run.Result)
	}
}

func TestGetUnknownIsErrNotFound(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	_, err := store.Get(context.Background(), "nope-0000")
	if !errors.Is(err, history.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSaveIsIdempotentPerReportID(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, reportContext(t, "gdpr-0002", "https://example.com", `{"grade": "D"}`, started)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Same id again: the newer payload wins, no duplicate row.
	if err := store.Save(ctx, reportContext(t, "gdpr-0002", "https://example.com", `{"grade": "B"}`, started)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	run, err := store.Get(ctx, "gdpr-0002")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Result.Grade != "B" {
		t.Errorf("grade = %q, want the re-saved payload", run.Result.Grade)
	}

	runs, err := store.ListByURL(ctx, "gdpr", "https://example.com", 0)
	if err != nil {
		t.Fatalf("ListByURL: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("rows = %d, want 1", len(runs))
	}
}

func TestListByURLNormalizesAndOrders(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Three runs of the same target under different spellings.
	spellings := []string{"https://example.com/page", "https://EXAMPLE.com/page/", "https://example.com:443/page"}
	for i, u := range spellings {
		rc := reportContext(t, fmt.Sprintf("gdpr-100%d", i), u, `{"grade": "A"}`, base.Add(time.Duration(i)*time.Hour))
		if err := store.Save(ctx, rc); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	runs, err := store.ListByURL(ctx, "gdpr", "https://example.com/page", 0)
	if err != nil {
		t.Fatalf("ListByURL: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs not newest-first: %v then %v", runs[i-1].StartedAt, runs[i].StartedAt)
		}
	}
	if runs[0].Result != nil {
		t.Error("list rows should not carry payloads")
	}

	limited, err := store.ListByURL(ctx, "gdpr", "https://example.com/page", 2)
	if err != nil {
		t.Fatalf("ListByURL limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited runs = %d, want 2", len(limited))
	}
}

func TestDiffIdenticalRunsIsEmpty(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	payload := `{"score": 80, "findings": []}`
	// Same payload with keys in a different order.
	reordered := `{"findings": [], "score": 80}`
	if err := store.Save(ctx, reportContext(t, "gdpr-a", "https://example.com", payload, started)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, reportContext(t, "gdpr-b", "https://example.com", reordered, started.Add(time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	diff, err := store.Diff(ctx, "gdpr-a", "gdpr-b")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !diff.Empty() {
		t.Errorf("key order produced chunks: %+v", diff.Chunks)
	}
}

func TestDiffReportsChanges(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, reportContext(t, "gdpr-c", "https://example.com", `{"score": 50}`, started)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, reportContext(t, "gdpr-d", "https://example.com", `{"score": 90}`, started.Add(time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	diff, err := store.Diff(ctx, "gdpr-c", "gdpr-d")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Empty() {
		t.Fatal("changed score produced no chunks")
	}
	for _, c := range diff.Chunks {
		if c.Type != "added" && c.Type != "removed" {
			t.Errorf("unexpected chunk type %q", c.Type)
		}
	}
}

func TestDiffRejectsMixedAnalyzers(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rc := reportContext(t, "gdpr-e", "https://example.com", `{"score": 50}`, started)
	if err := store.Save(ctx, rc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other := reportContext(t, "mobile-f", "https://example.com", `{"score": 50}`, started)
	other.Analyzer = "mobile"
	if err := store.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := store.Diff(ctx, "gdpr-e", "mobile-f"); err == nil {
		t.Error("expected error diffing different analyzers")
	}
}
