package watcher

import (
	"context"
	"sort"
	"time"

	"github.com/gridcase/csv2mgc/pkg/logging"
)

// Debouncer batches rapid change events so that an editor saving several
// files triggers a single rebuild.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is flushed after
// quietPeriod without events, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       = stoppedTimer()
		deadline    = stoppedTimer()
		pending     bool
		accumulated = make(map[ChangeType]map[string]bool)
		eventCount  int
	)

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		pending = false
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// Config changes first, they affect how inputs are decoded
		for _, typ := range []ChangeType{ChangeTypeConfig, ChangeTypeInput} {
			if len(accumulated[typ]) == 0 {
				continue
			}
			paths := make([]string, 0, len(accumulated[typ]))
			for p := range accumulated[typ] {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			d.output <- ChangeEvent{Type: typ, Paths: paths, Timestamp: time.Now()}
		}

		accumulated = make(map[ChangeType]map[string]bool)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if accumulated[event.Type] == nil {
				accumulated[event.Type] = make(map[string]bool)
			}
			for _, p := range event.Paths {
				accumulated[event.Type][p] = true
			}
			eventCount++

			quiet.Reset(d.quietPeriod)
			if !pending {
				deadline.Reset(d.maxWait)
				pending = true
			}

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
