package webclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/testutil"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     webclient.Config
		wantErr bool
	}{
		{"default nethttp", webclient.Config{}, false},
		{"explicit nethttp", webclient.Config{Backend: "nethttp"}, false},
		{"case insensitive", webclient.Config{Backend: "NetHTTP"}, false},
		{"unknown", webclient.Config{Backend: "curl"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wc, err := webclient.New(tc.cfg, &testutil.DummyLogger{})
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer wc.Close()
		})
	}
}

func TestListBackendsIncludesBuiltins(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, n := range webclient.ListBackends() {
		names[n] = true
	}
	if !names["nethttp"] || !names["chromedp"] {
		t.Errorf("backends = %v", webclient.ListBackends())
	}
}

func TestNetHTTPClientInjectsDefaultUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := webclient.NewNetHTTPClient(time.Second, &testutil.DummyLogger{}, nil)
	resp, err := c.Do(context.Background(), &webclient.Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "ok" {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
	if gotUA != webclient.DefaultUserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestNetHTTPClientKeepsCallerUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := webclient.NewNetHTTPClient(time.Second, &testutil.DummyLogger{}, nil)
	headers := http.Header{}
	headers.Set("User-Agent", "custom-agent/1.0")
	if _, err := c.Do(context.Background(), &webclient.Request{URL: srv.URL, Headers: headers}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotUA != "custom-agent/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestNetHTTPClientHonorsContext(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c := webclient.NewNetHTTPClient(time.Minute, &testutil.DummyLogger{}, nil)
	if _, err := c.Do(ctx, &webclient.Request{URL: srv.URL}); err == nil {
		t.Fatal("expected context deadline error")
	}
}
