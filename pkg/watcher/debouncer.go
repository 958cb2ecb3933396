package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/ritzau/meetmap/pkg/logging"
)

// Debouncer batches rapid file system events to avoid reloading the
// document once per write syscall while an editor is still saving
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
	mu          sync.Mutex
}

// NewDebouncer creates a new event debouncer
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

// run accumulates events until the stream goes quiet or maxWait
// expires, whichever comes first
func (d *Debouncer) run(ctx context.Context) {
	var (
		timer        *time.Timer
		maxWaitTimer *time.Timer
		accumulated  []string
		removed      bool
		eventCount   int
	)

	flush := func() {
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		d.output <- ChangeEvent{
			Paths:     accumulated,
			Timestamp: time.Now(),
			Removed:   removed,
		}

		// Reset accumulators
		accumulated = nil
		removed = false
		eventCount = 0

		// Stop timers
		if timer != nil {
			timer.Stop()
		}
		if maxWaitTimer != nil {
			maxWaitTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			// Accumulate event; the latest removal state wins so a
			// remove followed by a re-create reads as a change
			accumulated = append(accumulated, event.Paths...)
			removed = event.Removed
			eventCount++

			// Reset quiet period timer
			if timer == nil {
				timer = time.NewTimer(d.quietPeriod)
			} else {
				timer.Reset(d.quietPeriod)
			}

			// Start max wait timer on first event of a burst
			if maxWaitTimer == nil {
				maxWaitTimer = time.NewTimer(d.maxWait)
			} else if eventCount == 1 {
				maxWaitTimer.Reset(d.maxWait)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			flush()

		case <-func() <-chan time.Time {
			if maxWaitTimer != nil {
				return maxWaitTimer.C
			}
			return nil
		}():
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
