package alert

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Dispatcher fans out events to matching webhook configurations.
// A nil Dispatcher drops everything.
type Dispatcher struct {
	configs []Config
	client  *http.Client
	backoff time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher from webhook configurations.
// Returns nil if configs is empty.
func NewDispatcher(configs []Config, logger *slog.Logger) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		configs: configs,
		client:  &http.Client{Timeout: requestTimeout},
		backoff: time.Second,
		logger:  logger,
	}
}

// Dispatch sends the event to every webhook subscribed to its outcome, or
// to risk_fallback when the scorer was unavailable. It does not block.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	for _, cfg := range d.configs {
		if !matches(cfg.Events, event) {
			continue
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.send(cfg, event); err != nil {
				d.logger.Warn("alert delivery failed", "url", cfg.URL, "error", err)
			}
		}()
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func matches(events []string, event Event) bool {
	for _, e := range events {
		if e == event.Outcome {
			return true
		}
		if e == EventFallback && isFallback(event) {
			return true
		}
	}
	return false
}
