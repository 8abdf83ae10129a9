package metrics

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWriteText(t *testing.T) {
	OperationsTotal.WithLabelValues("upsert").Inc()
	CorruptLoadsTotal.Inc()

	var buf bytes.Buffer
	if err := WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	out := buf.String()
	for _, name := range []string{
		"recent_sessions_operations_total",
		"recent_sessions_corrupt_loads_total",
		"recent_sessions_pruned_total",
		"recent_sessions_list_size",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in output", name)
		}
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(PrunedTotal)
	PrunedTotal.Add(2)
	if got := testutil.ToFloat64(PrunedTotal); got != before+2 {
		t.Errorf("PrunedTotal = %v, want %v", got, before+2)
	}

	StorageErrorsTotal.WithLabelValues("persist").Inc()
	var buf bytes.Buffer
	if err := WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	if !strings.Contains(buf.String(), `recent_sessions_storage_errors_total{op="persist"}`) {
		t.Error("expected labeled storage error counter in output")
	}
}

func TestObserveList(t *testing.T) {
	ObserveList(5, 3)

	if got := testutil.ToFloat64(ListSize); got != 5 {
		t.Errorf("ListSize = %v, want 5", got)
	}
	if got := testutil.ToFloat64(RecentSessions); got != 3 {
		t.Errorf("RecentSessions = %v, want 3", got)
	}
	if got := testutil.ToFloat64(StaleSessions); got != 2 {
		t.Errorf("StaleSessions = %v, want 2", got)
	}
}

func TestPush(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ObserveList(2, 1)
	if err := Push(srv.URL, "sessions"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if path != "/metrics/job/sessions" {
		t.Errorf("path = %s, want /metrics/job/sessions", path)
	}
	if len(body) == 0 {
		t.Error("expected a metrics payload")
	}
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := Push(srv.URL, "sessions"); err == nil {
		t.Fatal("expected error from failing gateway")
	}
}
