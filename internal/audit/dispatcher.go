package audit

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ppiankov/ztbench/internal/telemetry"
)

// DefaultBuffer is the dispatcher queue depth.
const DefaultBuffer = 1024

// Dispatcher forwards decision records to a Sink on a background goroutine.
// Dispatch never blocks and never fails: a full queue drops the record and a
// sink error is logged.
type Dispatcher struct {
	sink    Sink
	queue   chan Entry
	logger  *slog.Logger
	metrics *telemetry.Metrics
	buffer  int

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used to report dropped and failed records.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics counts dropped and failed records.
func WithMetrics(m *telemetry.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithBuffer sets the queue depth.
func WithBuffer(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.buffer = n
		}
	}
}

// NewDispatcher starts a dispatcher draining into sink. A nil sink discards.
func NewDispatcher(sink Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		buffer: DefaultBuffer,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan Entry, d.buffer)

	go d.run()
	return d
}

// Dispatch enqueues entry. Safe to call after Close (the entry is dropped).
func (d *Dispatcher) Dispatch(entry Entry) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(entry, "dispatcher closed")
		return
	}
	select {
	case d.queue <- entry:
	default:
		d.drop(entry, "queue full")
	}
}

// Close stops accepting records and waits until queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for entry := range d.queue {
		if d.sink == nil {
			continue
		}
		if err := d.record(entry); err != nil {
			d.metrics.IncrementLedgerFailure()
			d.logger.Warn("ledger write failed", "user", entry.User, "policy", entry.Policy, "error", err)
		}
	}
}

// record shields the worker from a panicking sink.
func (d *Dispatcher) record(entry Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return d.sink.Record(entry)
}

func (d *Dispatcher) drop(entry Entry, reason string) {
	d.metrics.IncrementLedgerFailure()
	d.logger.Warn("ledger record dropped", "user", entry.User, "reason", reason)
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements Sink.
func (m *MemorySink) Record(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *MemorySink) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
