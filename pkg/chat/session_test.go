package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]Turn
	reply func(turns []Turn) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, turns []Turn) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, turns)
	f.mu.Unlock()
	return f.reply(turns)
}

func replyWith(content string) *fakeCompleter {
	return &fakeCompleter{reply: func([]Turn) (string, error) { return content, nil }}
}

func TestSubmitAppendsUserAndAssistant(t *testing.T) {
	sess := NewSession("s1", replyWith("Hello!"))

	turn, err := sess.Submit(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "Hello!"}, turn)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleAssistant, Content: "Hello!"},
	}, sess.Transcript())
	assert.Equal(t, StateIdle, sess.State())
	assert.NoError(t, sess.LastError())
}

func TestSubmitRecordsFailureAsAssistantTurn(t *testing.T) {
	fail := true
	completer := &fakeCompleter{reply: func([]Turn) (string, error) {
		if fail {
			return "", errors.New("timeout")
		}
		return "recovered", nil
	}}
	sess := NewSession("s1", completer)

	turn, err := sess.Submit(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Error: timeout", turn.Content)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleAssistant, Content: "Error: timeout"},
	}, sess.Transcript())
	assert.EqualError(t, sess.LastError(), "timeout")

	fail = false
	_, err = sess.Submit(context.Background(), "again")
	require.NoError(t, err)
	assert.Len(t, sess.Transcript(), 4)
	assert.NoError(t, sess.LastError())
}

func TestSubmitGrowsByTwoAndAlternates(t *testing.T) {
	sess := NewSession("s1", replyWith("ok"))
	for i := 1; i <= 5; i++ {
		_, err := sess.Submit(context.Background(), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		turns := sess.Transcript()
		assert.Len(t, turns, 2*i)
		assert.True(t, Alternates(turns))
	}
}

func TestSubmitReplaysFullTranscriptInOrder(t *testing.T) {
	completer := &fakeCompleter{reply: func(turns []Turn) (string, error) {
		return fmt.Sprintf("reply %d", len(turns)), nil
	}}
	sess := NewSession("s1", completer)

	for _, msg := range []string{"one", "two", "three"} {
		_, err := sess.Submit(context.Background(), msg)
		require.NoError(t, err)
	}

	require.Len(t, completer.calls, 3)
	last := completer.calls[2]
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "reply 1"},
		{Role: RoleUser, Content: "two"},
		{Role: RoleAssistant, Content: "reply 3"},
		{Role: RoleUser, Content: "three"},
	}, last)
}

func TestSubmitKeepsUserTextVerbatim(t *testing.T) {
	completer := replyWith("ok")
	sess := NewSession("s1", completer)
	text := "    indented code\n  second line  "

	_, err := sess.Submit(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, text, sess.Transcript()[0].Content)
	require.Len(t, completer.calls, 1)
	assert.Equal(t, []Turn{{Role: RoleUser, Content: text}}, completer.calls[0])
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	completer := replyWith("unused")
	sess := NewSession("s1", completer)

	_, err := sess.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, sess.Transcript())
	assert.Empty(t, completer.calls)
}

func TestSubmitWithoutCompleterRecordsError(t *testing.T) {
	sess := NewSession("s1", nil)

	turn, err := sess.Submit(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Error: no completion backend configured", turn.Content)
}

func TestBeginWhileAwaitingIsBusy(t *testing.T) {
	sess := NewSession("s1", nil)

	pending, err := sess.Begin("first")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCompletion, sess.State())
	assert.Len(t, sess.Transcript(), 1)
	assert.True(t, Alternates(sess.Transcript()))

	_, err = sess.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)

	_, ok := sess.Finish(pending, "done", nil)
	assert.True(t, ok)
	assert.Equal(t, StateIdle, sess.State())
}

func TestClearResetsTranscript(t *testing.T) {
	sess := NewSession("s1", replyWith("ok"))
	_, err := sess.Submit(context.Background(), "Hi")
	require.NoError(t, err)

	sess.Clear()
	assert.Empty(t, sess.Transcript())
	assert.Equal(t, StateIdle, sess.State())

	_, err = sess.Submit(context.Background(), "fresh")
	require.NoError(t, err)
	turns := sess.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, Turn{Role: RoleUser, Content: "fresh"}, turns[0])
}

func TestClearDiscardsInFlightReply(t *testing.T) {
	sess := NewSession("s1", nil)

	pending, err := sess.Begin("Hi")
	require.NoError(t, err)
	sess.Clear()

	_, ok := sess.Finish(pending, "late", nil)
	assert.False(t, ok)
	assert.Empty(t, sess.Transcript())

	// The session accepts new input right after the clear.
	_, err = sess.Begin("next")
	assert.NoError(t, err)
}

func TestSubmitReportsClearDuringRequest(t *testing.T) {
	var sess *Session
	sess = NewSession("s1", CompleterFunc(func(context.Context, []Turn) (string, error) {
		sess.Clear()
		return "late", nil
	}))

	_, err := sess.Submit(context.Background(), "Hi")
	assert.ErrorIs(t, err, ErrCleared)
	assert.Empty(t, sess.Transcript())
}

func TestLastActiveUsesClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sess := NewSession("s1", replyWith("ok"), WithClock(func() time.Time { return now }))
	assert.Equal(t, now, sess.LastActive())

	now = now.Add(time.Minute)
	_, err := sess.Submit(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, now, sess.LastActive())
}

func TestAlternates(t *testing.T) {
	assert.True(t, Alternates(nil))
	assert.True(t, Alternates([]Turn{{Role: RoleUser}}))
	assert.False(t, Alternates([]Turn{{Role: RoleAssistant}}))
	assert.False(t, Alternates([]Turn{{Role: RoleUser}, {Role: RoleUser}}))
}

func TestTranscriptRejectsUnknownRole(t *testing.T) {
	var tr Transcript
	assert.Error(t, tr.Append(Turn{Role: "system", Content: "x"}))
	assert.Zero(t, tr.Len())
}

func TestErrorContent(t *testing.T) {
	assert.Equal(t, "Error: timeout", ErrorContent(errors.New("timeout")))
	assert.Equal(t, "Error: unknown error", ErrorContent(nil))
}
