package paywall_test

import (
	"context"
	"testing"

	"github.com/peternemser-ui/font-scanner-sub013/internal/paywall"
	"github.com/peternemser-ui/font-scanner-sub013/internal/testutil"
)

func TestNewStoreSelectsBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     paywall.Config
		wantErr bool
	}{
		{"default memory", paywall.Config{}, false},
		{"memory explicit", paywall.Config{Backend: "memory"}, false},
		{"sqlite", paywall.Config{Backend: "sqlite", Path: t.TempDir()}, false},
		{"unknown", paywall.Config{Backend: "nope"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store, err := paywall.NewStore(tc.cfg, &testutil.DummyLogger{})
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			defer store.Close()
		})
	}
}

func roundTripStore(t *testing.T, store paywall.Store) {
	t.Helper()
	ctx := context.Background()

	unlocked, err := store.IsUnlocked(ctx, "gdpr-aaaa")
	if err != nil {
		t.Fatalf("IsUnlocked: %v", err)
	}
	if unlocked {
		t.Error("fresh report reported unlocked")
	}

	if err := store.Unlock(ctx, "gdpr-aaaa"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	// Unlocking twice is not an error.
	if err := store.Unlock(ctx, "gdpr-aaaa"); err != nil {
		t.Fatalf("second Unlock: %v", err)
	}

	unlocked, err = store.IsUnlocked(ctx, "gdpr-aaaa")
	if err != nil {
		t.Fatalf("IsUnlocked after unlock: %v", err)
	}
	if !unlocked {
		t.Error("unlocked report still reported locked")
	}

	other, err := store.IsUnlocked(ctx, "gdpr-bbbb")
	if err != nil {
		t.Fatalf("IsUnlocked other: %v", err)
	}
	if other {
		t.Error("unlock leaked onto another report id")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := paywall.NewMemoryStore()
	defer store.Close()
	roundTripStore(t, store)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store, err := paywall.NewSQLiteStore(t.TempDir(), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	roundTripStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := paywall.NewSQLiteStore(dir, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Unlock(context.Background(), "fonts-1234"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	store.Close()

	store, err = paywall.NewSQLiteStore(dir, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	unlocked, err := store.IsUnlocked(context.Background(), "fonts-1234")
	if err != nil {
		t.Fatalf("IsUnlocked: %v", err)
	}
	if !unlocked {
		t.Error("unlock did not survive reopen")
	}
}

func TestServiceNotifiesSubscribers(t *testing.T) {
	t.Parallel()

	svc := paywall.NewService(paywall.NewMemoryStore(), &testutil.DummyLogger{})
	defer svc.Close()

	var got []paywall.Event
	unsub := svc.Subscribe("seo-1111", func(ev paywall.Event) {
		got = append(got, ev)
	})

	var other int
	svc.Subscribe("seo-2222", func(paywall.Event) { other++ })

	if err := svc.Unlock(context.Background(), "seo-1111"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if len(got) != 1 || got[0].ReportID != "seo-1111" {
		t.Fatalf("events = %+v, want one for seo-1111", got)
	}
	if other != 0 {
		t.Errorf("subscriber of another report notified %d times", other)
	}

	unsub()
	if err := svc.Unlock(context.Background(), "seo-1111"); err != nil {
		t.Fatalf("Unlock after unsubscribe: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("unsubscribed callback fired, events = %d", len(got))
	}
}
