package alert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestDispatcher(configs []Config) *Dispatcher {
	d := NewDispatcher(configs, nil)
	d.backoff = time.Millisecond
	return d
}

func countingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &called
}

func TestDispatchMatchesOutcome(t *testing.T) {
	srv, called := countingServer(t, http.StatusOK)
	d := newTestDispatcher([]Config{{URL: srv.URL, Events: []string{EventDenied}}})

	d.Dispatch(Event{Outcome: EventDenied, Policy: "MAC", Risk: 0.4})
	d.Dispatch(Event{Outcome: EventGranted, Policy: "MAC", Risk: 0.1, HTTPStatus: 200})
	d.Wait()

	if called.Load() != 1 {
		t.Errorf("expected 1 call, got %d", called.Load())
	}
}

func TestDispatchMultipleWebhooks(t *testing.T) {
	srv1, called1 := countingServer(t, http.StatusOK)
	srv2, called2 := countingServer(t, http.StatusOK)

	d := newTestDispatcher([]Config{
		{URL: srv1.URL, Events: []string{EventDenied}},
		{URL: srv2.URL, Events: []string{EventDenied, EventUnauthenticated}},
	})
	d.Dispatch(Event{Outcome: EventUnauthenticated, Risk: 1})
	d.Dispatch(Event{Outcome: EventDenied, Risk: 0.9})
	d.Wait()

	if called1.Load() != 1 || called2.Load() != 2 {
		t.Errorf("expected 1 and 2 calls, got %d and %d", called1.Load(), called2.Load())
	}
}

func TestDispatchMatchesFallbackStatus(t *testing.T) {
	srv, called := countingServer(t, http.StatusOK)
	d := newTestDispatcher([]Config{{URL: srv.URL, Events: []string{EventFallback}}})

	d.Dispatch(Event{Outcome: EventGranted, HTTPStatus: 500})
	d.Dispatch(Event{Outcome: EventGranted, HTTPStatus: 200})
	d.Wait()

	if called.Load() != 1 {
		t.Errorf("expected 1 call for fallback, got %d", called.Load())
	}
}

func TestNilDispatcher(t *testing.T) {
	d := NewDispatcher(nil, nil)
	if d != nil {
		t.Fatal("expected nil dispatcher for empty configs")
	}
	d.Dispatch(Event{Outcome: EventDenied})
	d.Wait()
}

func TestSendRetriesServerErrors(t *testing.T) {
	srv, called := countingServer(t, http.StatusBadGateway)
	d := newTestDispatcher([]Config{{URL: srv.URL, Events: []string{EventDenied}}})

	err := d.send(d.configs[0], Event{Outcome: EventDenied})
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if called.Load() != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, called.Load())
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	srv, called := countingServer(t, http.StatusForbidden)
	d := newTestDispatcher([]Config{{URL: srv.URL, Events: []string{EventDenied}}})

	if err := d.send(d.configs[0], Event{Outcome: EventDenied}); err == nil {
		t.Fatal("expected rejection error")
	}
	if called.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", called.Load())
	}
}

func TestSendHeadersAndBody(t *testing.T) {
	var got Event
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	d := newTestDispatcher([]Config{{
		URL:     srv.URL,
		Events:  []string{EventDenied},
		Headers: map[string]string{"Authorization": "Bearer t"},
	}})
	ev := Event{Timestamp: 1700000000, User: "u1", Policy: "RBAC", Variant: "Zero Trust Only", Outcome: EventDenied, Risk: 0.9, HTTPStatus: 200}
	if err := d.send(d.configs[0], ev); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer t" {
		t.Errorf("expected auth header, got %q", auth)
	}
	if got != ev {
		t.Errorf("payload mismatch: %+v", got)
	}
}

func TestFormatSlackAndPagerDuty(t *testing.T) {
	ev := Event{User: "u1", Policy: "DAC", Variant: "Zero Trust + Blockchain", Outcome: EventDenied, Risk: 0.95}

	data, err := FormatPayload("slack", ev)
	if err != nil {
		t.Fatal(err)
	}
	var slack map[string]any
	if err := json.Unmarshal(data, &slack); err != nil {
		t.Fatal(err)
	}
	if _, ok := slack["blocks"]; !ok {
		t.Error("slack payload missing blocks")
	}

	data, err = FormatPayload("pagerduty", ev)
	if err != nil {
		t.Fatal(err)
	}
	var pd struct {
		Payload struct {
			Severity string `json:"severity"`
			Source   string `json:"source"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &pd); err != nil {
		t.Fatal(err)
	}
	if pd.Payload.Severity != "critical" || pd.Payload.Source != "ztbench" {
		t.Errorf("unexpected pagerduty payload: %+v", pd.Payload)
	}
}
