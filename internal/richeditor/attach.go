// Package richeditor attaches the tracker to a rich editor that exposes its
// own caret element once it has finished loading.
package richeditor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/verte-zerg/typetrack/internal/logging"
	"github.com/verte-zerg/typetrack/internal/position"
)

// Defaults for Options.
const (
	DefaultMaxAttempts = 20
	DefaultInterval    = 500 * time.Millisecond
)

// ErrGaveUp is returned when the caret container never became available.
var ErrGaveUp = errors.New("rich editor caret container not found")

// Outcome is the final state of an attach attempt.
type Outcome int

// Attach outcomes.
const (
	GaveUp Outcome = iota
	Attached
)

func (o Outcome) String() string {
	if o == Attached {
		return "attached"
	}
	return "gave-up"
}

// Locator looks up the editor caret container.
type Locator interface {
	Locate() (position.CaretSource, bool)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func() (position.CaretSource, bool)

// Locate implements Locator.
func (f LocatorFunc) Locate() (position.CaretSource, bool) { return f() }

// Options bound the readiness wait.
type Options struct {
	MaxAttempts int
	Interval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Result reports how the attach ended.
type Result struct {
	Outcome   Outcome
	Container position.CaretSource
	Attempts  int
}

// Attach polls loc until it yields a caret container or the attempt budget
// runs out. The first attempt runs immediately.
func Attach(ctx context.Context, loc Locator, opts Options, log *slog.Logger) (Result, error) {
	opts = opts.withDefaults()
	log = logging.Component(log, "richeditor")
	limiter := rate.NewLimiter(rate.Every(opts.Interval), 1)

	var res Result
	for res.Attempts < opts.MaxAttempts {
		if err := limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("failed to wait for rich editor: %w", err)
		}
		res.Attempts++
		container, ok := loc.Locate()
		if ok && container != nil {
			res.Outcome = Attached
			res.Container = container
			log.Info("rich editor attached", "attempts", res.Attempts)
			return res, nil
		}
	}
	log.Warn("rich editor integration could not attach", "attempts", res.Attempts, "interval", opts.Interval)
	return res, ErrGaveUp
}
