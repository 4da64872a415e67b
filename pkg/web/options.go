package web

import (
	"time"

	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVerbose enables per-request debug logging.
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// WithIdleSweep sets how long an idle session lives and how often idle
// sessions are collected. A non-positive interval disables collection.
func WithIdleSweep(maxIdle, interval time.Duration) Option {
	return func(s *Server) {
		if maxIdle > 0 {
			s.maxIdle = maxIdle
		}
		s.sweepInterval = interval
	}
}
