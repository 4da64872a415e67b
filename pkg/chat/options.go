package chat

import (
	"time"

	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

// Option configures optional runtime dependencies for Session and Store.
type Option func(*sessionDeps)

type sessionDeps struct {
	logger  loggerpkg.Logger
	verbose bool
	now     func() time.Time
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *sessionDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithVerbose enables debug logging.
func WithVerbose(verbose bool) Option {
	return func(d *sessionDeps) {
		d.verbose = verbose
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *sessionDeps) {
		if now != nil {
			d.now = now
		}
	}
}
