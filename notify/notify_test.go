package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/simple-todo-server/config"
)

// fakeBotAPI records sendMessage calls and answers with the given status.
func fakeBotAPI(t *testing.T, status int, reply string) (*httptest.Server, chan sendMessageRequest) {
	t.Helper()
	calls := make(chan sendMessageRequest, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/botsecret-token/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req sendMessageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls <- req
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(ts.Close)
	return ts, calls
}

func newTelegram(baseURL string, buf *bytes.Buffer) *Telegram {
	return &Telegram{
		Token:   "secret-token",
		ChatID:  "42",
		BaseURL: baseURL,
		Timeout: time.Second,
		Client:  &http.Client{},
		Logger:  log.NewWithOptions(buf, log.Options{Level: log.DebugLevel}),
	}
}

func TestTelegramDelivers(t *testing.T) {
	ts, calls := fakeBotAPI(t, http.StatusOK, `{"ok":true}`)
	var buf bytes.Buffer
	tg := newTelegram(ts.URL+"/", &buf)

	tg.Notify(context.Background(), "New todo added: Buy milk")

	got := <-calls
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "New todo added: Buy milk", got.Text)
	assert.Contains(t, buf.String(), "notification delivered")
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestTelegramTruncatesLongMessages(t *testing.T) {
	ts, calls := fakeBotAPI(t, http.StatusOK, `{"ok":true}`)
	var buf bytes.Buffer
	tg := newTelegram(ts.URL, &buf)

	tg.Notify(context.Background(), strings.Repeat("ж", MaxMessageLength+100))

	got := <-calls
	runes := []rune(got.Text)
	assert.Len(t, runes, MaxMessageLength)
	assert.True(t, strings.HasSuffix(got.Text, "..."))
}

func TestTelegramSwallowsFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		ts, calls := fakeBotAPI(t, http.StatusBadRequest, `{"ok":false,"description":"chat not found"}`)
		var buf bytes.Buffer
		newTelegram(ts.URL, &buf).Notify(context.Background(), "hello")
		<-calls
		assert.Contains(t, buf.String(), "notification not delivered")
		assert.Contains(t, buf.String(), "chat not found")
	})

	t.Run("ok false", func(t *testing.T) {
		ts, calls := fakeBotAPI(t, http.StatusOK, `{"ok":false,"description":"blocked"}`)
		var buf bytes.Buffer
		newTelegram(ts.URL, &buf).Notify(context.Background(), "hello")
		<-calls
		assert.Contains(t, buf.String(), "api rejected message: blocked")
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()
		var buf bytes.Buffer
		newTelegram(ts.URL, &buf).Notify(context.Background(), "hello")
		assert.Contains(t, buf.String(), "notification not delivered")
		assert.NotContains(t, buf.String(), "secret-token")
	})
}

func TestTelegramTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	var buf bytes.Buffer
	tg := newTelegram(ts.URL, &buf)
	tg.Timeout = 50 * time.Millisecond

	start := time.Now()
	tg.Notify(context.Background(), "slow")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, buf.String(), "notification not delivered")
}

func TestNewSelectsNotifier(t *testing.T) {
	logger := log.New(io.Discard)

	n := New(config.TelegramConfig{BotToken: "t"}, logger)
	assert.IsType(t, Nop{}, n)

	n = New(config.TelegramConfig{
		BotToken: "t",
		ChatID:   "c",
		APIBase:  config.DefaultAPIBase,
		Timeout:  config.Duration{Duration: 3 * time.Second},
	}, logger)
	tg, ok := n.(*Telegram)
	require.True(t, ok)
	assert.Equal(t, "c", tg.ChatID)
	assert.Equal(t, 3*time.Second, tg.Timeout)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "ééé...", Truncate(strings.Repeat("é", 20), 6))
}
