// Package notify sends best-effort messages to an external chat endpoint.
//
// Delivery is a single attempt bounded by a timeout. Failures are logged and
// never returned, so callers can fire and forget.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/stevemurr/simple-todo-server/config"
)

// MaxMessageLength is the Bot API limit for a sendMessage text, in characters.
const MaxMessageLength = 4096

const ellipsis = "..."

// Notifier delivers a pre-formatted message.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}

// Telegram posts messages to a chat through the Telegram Bot API.
type Telegram struct {
	Token   string
	ChatID  string
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *log.Logger
}

// New returns a Telegram notifier when both credentials are configured and
// Nop otherwise.
func New(cfg config.TelegramConfig, logger *log.Logger) Notifier {
	if !cfg.Enabled() {
		logger.Debug("telegram notifications disabled")
		return Nop{}
	}
	return &Telegram{
		Token:   cfg.BotToken,
		ChatID:  cfg.ChatID,
		BaseURL: cfg.APIBase,
		Timeout: cfg.Timeout.Duration,
		Client:  http.DefaultClient,
		Logger:  logger.WithPrefix("telegram"),
	}
}

// Notify sends message once. Errors are logged, never returned.
func (t *Telegram) Notify(ctx context.Context, message string) {
	if err := t.send(ctx, message); err != nil {
		t.Logger.Warn("notification not delivered", "err", err)
		return
	}
	t.Logger.Debug("notification delivered", "chat", t.ChatID)
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) send(ctx context.Context, message string) error {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(sendMessageRequest{ChatID: t.ChatID, Text: Truncate(message, MaxMessageLength)})
	if err != nil {
		return err
	}
	url := strings.TrimSuffix(t.BaseURL, "/") + "/bot" + t.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// The URL embeds the token; keep it out of the logs.
		return fmt.Errorf("send message: %w", redact(err, t.Token))
	}
	defer resp.Body.Close()

	var reply sendMessageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &reply)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, reply.Description)
	}
	if !reply.OK {
		return fmt.Errorf("api rejected message: %s", reply.Description)
	}
	return nil
}

// Truncate shortens s to at most limit characters, marking the cut with "...".
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-len(ellipsis)]) + ellipsis
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "<redacted>"), err: err}
}
