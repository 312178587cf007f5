package alert

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/ztbench/internal/model"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 3
	userAgent      = "ztbench-alert/1"
)

// send posts an event to a webhook endpoint. Transport errors and 5xx
// answers are retried with linear backoff.
func (d *Dispatcher) send(cfg Config, event Event) error {
	body, err := FormatPayload(cfg.Format, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * d.backoff)
		}
		var retry bool
		retry, lastErr = d.post(cfg, body)
		if !retry {
			return lastErr
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", maxRetries, lastErr)
}

// post performs one delivery attempt and reports whether a failure is
// worth retrying. A 4xx answer is final.
func (d *Dispatcher) post(cfg Config, body []byte) (bool, error) {
	req, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return false, fmt.Errorf("webhook rejected: HTTP %d", resp.StatusCode)
	default:
		return true, fmt.Errorf("webhook server error: HTTP %d", resp.StatusCode)
	}
}

// isFallback reports whether the attempt was scored by the heuristic.
func isFallback(e Event) bool {
	return e.HTTPStatus == model.StatusFallback
}
