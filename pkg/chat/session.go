package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

var (
	// ErrEmptyMessage is returned for blank submissions.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when a submission arrives while a reply is pending.
	ErrBusy = errors.New("a reply is still pending")
	// ErrCleared is returned by Submit when the transcript was cleared before
	// the reply arrived; the reply is dropped.
	ErrCleared = errors.New("conversation was cleared before the reply arrived")
)

// Completer produces the assistant reply for a full transcript replay.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, turns []Turn) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, turns []Turn) (string, error) {
	return f(ctx, turns)
}

// State is the position of a Session in the turn-taking cycle.
type State int

const (
	StateIdle State = iota
	StateUserSubmitted
	StateAwaitingCompletion
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUserSubmitted:
		return "user_submitted"
	case StateAwaitingCompletion:
		return "awaiting_completion"
	default:
		return "unknown"
	}
}

const errorPrefix = "Error: "

// ErrorContent formats a failed request as the content of an assistant Turn.
func ErrorContent(err error) string {
	if err == nil {
		return errorPrefix + "unknown error"
	}
	return errorPrefix + err.Error()
}

// Pending is a submitted user Turn waiting for its reply.
type Pending struct {
	// Messages is the full transcript to replay, ending with the new user Turn.
	Messages []Turn

	generation uint64
}

// Session owns one transcript and runs one turn at a time against a Completer.
type Session struct {
	mu sync.Mutex

	id         string
	completer  Completer
	transcript Transcript
	state      State
	generation uint64
	lastErr    error
	lastActive time.Time

	logger  loggerpkg.Logger
	verbose bool
	now     func() time.Time
}

// NewSession creates an empty session.
func NewSession(id string, completer Completer, opts ...Option) *Session {
	deps := sessionDeps{logger: loggerpkg.NopLogger{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	return &Session{
		id:         id,
		completer:  completer,
		state:      StateIdle,
		lastActive: deps.now(),
		logger:     deps.logger,
		verbose:    deps.verbose,
		now:        deps.now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Begin appends the user's Turn and returns the replay payload for the
// completion request. The session stays busy until Finish or Clear.
func (s *Session) Begin(text string) (Pending, error) {
	if strings.TrimSpace(text) == "" {
		return Pending{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return Pending{}, ErrBusy
	}

	_ = s.transcript.Append(Turn{Role: RoleUser, Content: text})
	s.state = StateUserSubmitted
	s.lastErr = nil
	s.lastActive = s.now()

	pending := Pending{Messages: s.transcript.Turns(), generation: s.generation}
	s.state = StateAwaitingCompletion
	loggerpkg.Debug(s.verbose, s.logger, "turn submitted", map[string]any{
		"session": s.id,
		"turns":   len(pending.Messages),
	})
	return pending, nil
}

// Finish records the outcome of a pending request as an assistant Turn.
// A failed request is recorded as "Error: <detail>". It returns false when
// the transcript was cleared after Begin; the reply is then discarded.
func (s *Session) Finish(p Pending, content string, err error) (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.generation != s.generation || s.state != StateAwaitingCompletion {
		loggerpkg.Debug(s.verbose, s.logger, "discarding stale reply", map[string]any{
			"session": s.id,
		})
		return Turn{}, false
	}

	turn := Turn{Role: RoleAssistant, Content: content}
	if err != nil {
		turn.Content = ErrorContent(err)
		loggerpkg.Warn(s.logger, "completion failed", map[string]any{
			"session": s.id,
			"error":   err.Error(),
		})
	}
	_ = s.transcript.Append(turn)
	s.lastErr = err
	s.state = StateIdle
	s.lastActive = s.now()
	if s.verbose {
		loggerpkg.Debug(true, s.logger, "turn completed", map[string]any{
			"session":    s.id,
			"turns":      s.transcript.Len(),
			"alternates": Alternates(s.transcript.Turns()),
		})
	}
	return turn, true
}

// Submit runs one full turn: append the user's Turn, replay the transcript to
// the completer, and append the reply. Request failures never surface as an
// error; they become the assistant Turn. Only input problems are returned.
func (s *Session) Submit(ctx context.Context, text string) (Turn, error) {
	pending, err := s.Begin(text)
	if err != nil {
		return Turn{}, err
	}

	var content string
	if s.completer == nil {
		err = errors.New("no completion backend configured")
	} else {
		content, err = s.completer.Complete(ctx, pending.Messages)
	}

	turn, ok := s.Finish(pending, content, err)
	if !ok {
		return Turn{}, ErrCleared
	}
	return turn, nil
}

// Clear empties the transcript. Any reply still in flight is discarded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Clear()
	s.generation++
	s.state = StateIdle
	s.lastErr = nil
	s.lastActive = s.now()
	loggerpkg.Debug(s.verbose, s.logger, "transcript cleared", map[string]any{"session": s.id})
}

// Transcript returns a copy of the Turns in display order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Turns()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the failure of the most recent turn, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastActive returns when the session last changed.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
