package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	"github.com/minhyannv/chat-assistant-go/pkg/page"
)

func newTestServer(t *testing.T, completer chat.Completer) (*httptest.Server, *chat.Store) {
	t.Helper()
	store := chat.NewStore(completer)
	srv := httptest.NewServer(NewServer(store, WithIdleSweep(0, 0)).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) string {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) string {
	t.Helper()
	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func sessionCookie(t *testing.T, c *http.Client, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	t.Fatalf("no %s cookie", SessionCookie)
	return ""
}

func echo(reply string) chat.Completer {
	return chat.CompleterFunc(func(context.Context, []chat.Turn) (string, error) {
		return reply, nil
	})
}

func TestIndexRendersPage(t *testing.T) {
	srv, store := newTestServer(t, echo("unused"))
	body := get(t, newBrowser(t), srv.URL+"/")

	for _, want := range []string{page.Title, page.Subtitle, page.ClearLabel, page.GuideHeading, page.SecurityHeading, page.InputPlaceholder} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, 1, store.Len())
}

func TestChatAppendsTurns(t *testing.T) {
	srv, _ := newTestServer(t, echo("Hello!"))
	browser := newBrowser(t)

	body := post(t, browser, srv.URL+"/chat", url.Values{"message": {"Hi"}})
	assert.Contains(t, body, "Hi")
	assert.Contains(t, body, "<p>Hello!</p>")
	assert.NotContains(t, body, `role="alert"`)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, store := newTestServer(t, echo("Hello!"))
	alice := newBrowser(t)
	bob := newBrowser(t)

	post(t, alice, srv.URL+"/chat", url.Values{"message": {"secret question"}})
	body := get(t, bob, srv.URL+"/")

	assert.NotContains(t, body, "secret question")
	assert.Equal(t, 2, store.Len())
}

func TestFailureShowsBannerAndTurn(t *testing.T) {
	srv, _ := newTestServer(t, chat.CompleterFunc(func(context.Context, []chat.Turn) (string, error) {
		return "", errors.New("timeout")
	}))
	browser := newBrowser(t)

	body := post(t, browser, srv.URL+"/chat", url.Values{"message": {"Hi"}})
	assert.Equal(t, 2, strings.Count(body, "Error: timeout"))
	assert.Contains(t, body, `role="alert"`)

	body = post(t, browser, srv.URL+"/chat", url.Values{"message": {"again"}})
	assert.Contains(t, body, "again")
}

func TestClearResetsTranscript(t *testing.T) {
	srv, store := newTestServer(t, echo("Hello!"))
	browser := newBrowser(t)

	post(t, browser, srv.URL+"/chat", url.Values{"message": {"Hi"}})
	before := sessionCookie(t, browser, srv.URL)
	body := post(t, browser, srv.URL+"/clear", nil)

	assert.NotContains(t, body, "Hello!")
	assert.Equal(t, 0, strings.Count(body, `class="turn `))
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get(before)
	assert.False(t, ok)
	assert.NotEqual(t, before, sessionCookie(t, browser, srv.URL))
}

func TestSubmitKeepsMessageVerbatim(t *testing.T) {
	var sent []chat.Turn
	srv, _ := newTestServer(t, chat.CompleterFunc(func(_ context.Context, turns []chat.Turn) (string, error) {
		sent = turns
		return "ok", nil
	}))

	post(t, newBrowser(t), srv.URL+"/chat", url.Values{"message": {"  spaced out  "}})
	require.Len(t, sent, 1)
	assert.Equal(t, "  spaced out  ", sent[0].Content)
}

func TestBlankMessageIsIgnored(t *testing.T) {
	calls := 0
	srv, _ := newTestServer(t, chat.CompleterFunc(func(context.Context, []chat.Turn) (string, error) {
		calls++
		return "x", nil
	}))

	body := post(t, newBrowser(t), srv.URL+"/chat", url.Values{"message": {"   "}})
	assert.Zero(t, calls)
	assert.Equal(t, 0, strings.Count(body, `class="turn `))
}

func TestUserContentIsEscaped(t *testing.T) {
	srv, _ := newTestServer(t, echo("ok"))
	body := post(t, newBrowser(t), srv.URL+"/chat", url.Values{"message": {"<b>bold</b>"}})
	assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, echo("ok"))
	get(t, newBrowser(t), srv.URL+"/")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, 1, payload.Sessions)
}
