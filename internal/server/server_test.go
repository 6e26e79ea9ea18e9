package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/paywall"
	"github.com/peternemser-ui/font-scanner-sub013/internal/server"
	"github.com/peternemser-ui/font-scanner-sub013/internal/testutil"
)

func init() {
	analyzers.RegisterBuiltins()
}

// fakeAnalyzer answers every analyzer path with a fixed envelope.
func fakeAnalyzer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"score": 82, "grade": "B", "scanStartedAt": %q, "recommendations": ["do better"]}`,
			body["scanStartedAt"])
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newGateway(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()
	backend := fakeAnalyzer(t)
	srv, err := server.NewServer(&server.Config{
		Addr:            ":0",
		AnalyzerBaseURL: backend.URL,
		Timeout:         5 * time.Second,
		StepInterval:    5 * time.Millisecond,
		StorageDir:      t.TempDir(),
		Paywall:         paywall.Config{Backend: "memory"},
		Logger:          &testutil.DummyLogger{},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

type jobDoc struct {
	ID       string `json:"id"`
	Analyzer string `json:"analyzer"`
	Status   string `json:"status"`
	Error    string `json:"error"`
	ReportID string `json:"report_id"`
}

func startScan(t *testing.T, gw *httptest.Server, analyzer, url string) *jobDoc {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"analyzer": analyzer, "url": url})
	resp, err := http.Post(gw.URL+"/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /scans: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var job jobDoc
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job has no id")
	}
	return &job
}

func waitForJob(t *testing.T, gw *httptest.Server, jobID string, want string) *jobDoc {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(gw.URL + "/scans/" + jobID)
		if err != nil {
			t.Fatalf("GET /scans/%s: %v", jobID, err)
		}
		var job jobDoc
		err = json.NewDecoder(resp.Body).Decode(&job)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if job.Status == want {
			return &job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s stuck at %q (error %q), want %q", jobID, job.Status, job.Error, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScanJobFlow(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	job := startScan(t, gw, "gdpr", "https://example.com")

	done := waitForJob(t, gw, job.ID, "done")
	if done.ReportID == "" {
		t.Fatal("finished job has no report id")
	}

	// The report was archived and is fetchable.
	resp, err := http.Get(gw.URL + "/reports/" + done.ReportID)
	if err != nil {
		t.Fatalf("GET report: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", resp.StatusCode)
	}
	var run struct {
		ReportID string `json:"reportId"`
		Analyzer string `json:"analyzer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ReportID != done.ReportID || run.Analyzer != "gdpr" {
		t.Errorf("run = %+v", run)
	}
}

func TestStartScanRejectsUnknownAnalyzer(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	body, _ := json.Marshal(map[string]any{"analyzer": "nope", "url": "https://example.com"})
	resp, err := http.Post(gw.URL+"/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestScanJobFailsOnBadURL(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	job := startScan(t, gw, "gdpr", "ftp://example.com")
	failed := waitForJob(t, gw, job.ID, "failed")
	if failed.Error == "" {
		t.Error("failed job carries no error message")
	}
}

func TestUnlockAndExportFlow(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	job := startScan(t, gw, "fonts", "https://example.com")
	done := waitForJob(t, gw, job.ID, "done")

	// Locked CSV export has no recommendation rows.
	resp, err := http.Get(gw.URL + "/reports/" + done.ReportID + "/export?format=csv")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	lockedBody := readAll(t, resp)
	if strings.Contains(lockedBody, "do better") {
		t.Error("locked export leaked recommendations")
	}

	// Unlock, then the export includes them.
	post, err := http.Post(gw.URL+"/reports/"+done.ReportID+"/unlock", "application/json", nil)
	if err != nil {
		t.Fatalf("POST unlock: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusOK {
		t.Fatalf("unlock status = %d", post.StatusCode)
	}

	resp, err = http.Get(gw.URL + "/reports/" + done.ReportID + "/export?format=csv")
	if err != nil {
		t.Fatalf("GET export after unlock: %v", err)
	}
	unlockedBody := readAll(t, resp)
	if !strings.Contains(unlockedBody, "do better") {
		t.Error("unlocked export missing recommendations")
	}
}

func TestUnlockUnknownReportIs404(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	resp, err := http.Post(gw.URL+"/reports/nope-0000/unlock", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListAnalyzers(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	resp, err := http.Get(gw.URL + "/analyzers")
	if err != nil {
		t.Fatalf("GET /analyzers: %v", err)
	}
	defer resp.Body.Close()
	var keys []string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, k := range keys {
		if k == "broken-links" {
			found = true
		}
	}
	if !found {
		t.Errorf("keys = %v", keys)
	}
}

func TestCancelJobEndpoint(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)

	req, _ := http.NewRequest(http.MethodDelete, gw.URL+"/scans/unknown-id", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", resp.StatusCode)
	}

	job := startScan(t, gw, "gdpr", "https://example.com")
	req, _ = http.NewRequest(http.MethodDelete, gw.URL+"/scans/"+job.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("cancel status = %d", resp.StatusCode)
	}
}

func TestScanWebSocketStreamsEvents(t *testing.T) {
	t.Parallel()

	_, gw := newGateway(t)
	wsURL := "ws" + strings.TrimPrefix(gw.URL, "http") + "/ws/scans?analyzer=gdpr&url=https://example.com"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First frame is the job snapshot.
	var job jobDoc
	if err := conn.ReadJSON(&job); err != nil {
		t.Fatalf("read job frame: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job frame has no id")
	}

	var sawResult, sawDone bool
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var ev struct {
			Type     string `json:"type"`
			Status   string `json:"status"`
			ReportID string `json:"report_id"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		if ev.Type == "result" && ev.ReportID != "" {
			sawResult = true
		}
		if ev.Type == "status" && ev.Status == "done" {
			sawDone = true
			break
		}
	}
	if !sawResult {
		t.Error("no result event on the stream")
	}
	if !sawDone {
		t.Error("no done status on the stream")
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return buf.String()
}
