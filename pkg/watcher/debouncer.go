package watcher

import (
	"context"
	"slices"
	"time"

	"github.com/ritzau/pd-parser/pkg/logging"
)

// Debouncer batches rapid file system events so that a burst of saves
// results in one re-parse
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. Events are flushed once no new
// event arrived for quietPeriod, or at the latest maxWait after the first
// event of a batch.
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

// Output returns the channel of debounced events. It is closed when the
// input closes or the context is done.
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet, deadline <-chan time.Time
		quietTimer      *time.Timer
		pending         = make(map[string]ChangeType)
		order           []string
		eventCount      int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if quietTimer != nil {
			quietTimer.Stop()
		}
		if eventCount == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", eventCount, "paths", len(order))

		// modifications first, a removed file has nothing left to parse
		for _, changeType := range []ChangeType{ChangeTypeModified, ChangeTypeRemoved} {
			var paths []string
			for _, path := range order {
				if pending[path] == changeType {
					paths = append(paths, path)
				}
			}
			if len(paths) > 0 {
				d.output <- ChangeEvent{Type: changeType, Paths: paths, Timestamp: time.Now()}
			}
		}

		pending = make(map[string]ChangeType)
		order = nil
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

			// the latest change of a path wins
			for _, path := range event.Paths {
				if !slices.Contains(order, path) {
					order = append(order, path)
				}
				pending[path] = event.Type
			}
			eventCount++

			if quietTimer == nil {
				quietTimer = time.NewTimer(d.quietPeriod)
			} else {
				quietTimer.Reset(d.quietPeriod)
			}
			quiet = quietTimer.C
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}
