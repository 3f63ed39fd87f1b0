package channel

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/stellarlinkco/kazubot/internal/bus"
	"github.com/stellarlinkco/kazubot/internal/config"
)

const lineChannelName = "line"

const (
	lineReplyURL        = "https://api.line.me/v2/bot/message/reply"
	linePushURL         = "https://api.line.me/v2/bot/message/push"
	lineMaxReplyCount   = 5
	lineSendMaxRetries  = 3
	lineSendTimeout     = 10 * time.Second
	lineMaxWebhookBytes = 1 << 20
)

// LineClient is the outbound side of the LINE Messaging API: the
// single-use reply slot and the repeatable push primitive.
type LineClient interface {
	Reply(ctx context.Context, replyToken string, texts []string) error
	Push(ctx context.Context, to string, text string) error
}

type defaultLineClient struct {
	token      string
	httpClient *http.Client
	replyURL   string
	pushURL    string
}

func newDefaultLineClient(token string) *defaultLineClient {
	return &defaultLineClient{
		token:      token,
		httpClient: &http.Client{Timeout: lineSendTimeout},
		replyURL:   lineReplyURL,
		pushURL:    linePushURL,
	}
}

type lineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func lineTextMessages(texts []string) []lineTextMessage {
	msgs := make([]lineTextMessage, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, lineTextMessage{Type: "text", Text: t})
	}
	return msgs
}

func (c *defaultLineClient) Reply(ctx context.Context, replyToken string, texts []string) error {
	if len(texts) > lineMaxReplyCount {
		texts = texts[:lineMaxReplyCount]
	}
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   lineTextMessages(texts),
	}
	return c.post(ctx, c.replyURL, payload)
}

func (c *defaultLineClient) Push(ctx context.Context, to string, text string) error {
	payload := map[string]any{
		"to":       to,
		"messages": lineTextMessages([]string{text}),
	}
	return c.post(ctx, c.pushURL, payload)
}

func (c *defaultLineClient) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal line payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= lineSendMaxRetries; attempt++ {
		err := c.postOnce(ctx, url, body)
		if err == nil {
			return nil
		}
		lastErr = err

		var statusErr *lineStatusError
		retryable := errors.As(err, &statusErr) && statusErr.Code >= 500
		if !retryable || attempt == lineSendMaxRetries {
			return err
		}

		backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

func (c *defaultLineClient) postOnce(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send line request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &lineStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}

type lineStatusError struct {
	Code int
	Body string
}

func (e *lineStatusError) Error() string {
	return fmt.Sprintf("line api status %d: %s", e.Code, e.Body)
}

// lineWebhookBody mirrors the subset of the webhook payload the bot
// consumes.
type lineWebhookBody struct {
	Events []lineEvent `json:"events"`
}

type lineEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Timestamp  int64  `json:"timestamp"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// LineChannel serves the webhook and delivers replies/pushes. The
// webhook responds 200 as soon as events are on the bus; message
// authenticity is checked against the channel secret before anything
// reaches the core.
type LineChannel struct {
	BaseChannel
	secret string
	client LineClient
	pacer  Pacer
	port   int
	server *http.Server
}

func NewLineChannel(cfg config.LineConfig, gwCfg config.GatewayConfig, b *bus.MessageBus) (*LineChannel, error) {
	if cfg.ChannelSecret == "" {
		return nil, fmt.Errorf("line channel secret is required")
	}
	if cfg.ChannelToken == "" {
		return nil, fmt.Errorf("line channel token is required")
	}

	port := gwCfg.Port
	if port == 0 {
		port = config.DefaultPort
	}

	return &LineChannel{
		BaseChannel: NewBaseChannel(lineChannelName, b, cfg.AllowFrom),
		secret:      cfg.ChannelSecret,
		client:      newDefaultLineClient(cfg.ChannelToken),
		pacer:       pacerFromConfig(cfg.PaceMinMs, cfg.PaceMaxMs),
		port:        port,
	}, nil
}

func pacerFromConfig(minMs, maxMs int) Pacer {
	if minMs <= 0 {
		minMs = config.DefaultPaceMinMs
	}
	if maxMs <= 0 {
		maxMs = config.DefaultPaceMaxMs
	}
	return NewRandomPacer(time.Duration(minMs)*time.Millisecond, time.Duration(maxMs)*time.Millisecond)
}

func (l *LineChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/callback", l.handleCallback)

	l.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	go func() {
		log.Printf("[line] webhook listening on :%d", l.port)
		if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[line] server error: %v", err)
		}
	}()

	return nil
}

func (l *LineChannel) handleCallback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		// LINE webhook verification ping
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, lineMaxWebhookBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	if !VerifyLineSignature(l.secret, body, r.Header.Get("X-Line-Signature")) {
		log.Printf("[line] rejected webhook with bad signature")
		http.Error(w, "bad signature", http.StatusUnauthorized)
		return
	}

	var payload lineWebhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	for _, ev := range payload.Events {
		l.handleEvent(ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (l *LineChannel) handleEvent(ev lineEvent) {
	if ev.Type != "message" || ev.Message.Type != "text" {
		return
	}

	userID := ev.Source.UserID
	if userID == "" {
		userID = "unknown"
	}
	if !l.IsAllowed(userID) {
		log.Printf("[line] rejected message from %s", userID)
		return
	}

	ts := time.Now()
	if ev.Timestamp > 0 {
		ts = time.UnixMilli(ev.Timestamp)
	}

	l.bus.Inbound <- bus.InboundMessage{
		Channel:    lineChannelName,
		SenderID:   userID,
		ChatID:     userID,
		Content:    ev.Message.Text,
		ReplyToken: ev.ReplyToken,
		Timestamp:  ts,
	}
}

// VerifyLineSignature checks the X-Line-Signature header: the
// base64-encoded HMAC-SHA256 of the raw request body keyed with the
// channel secret.
func VerifyLineSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Send delivers one outbound message. A reply token spends the
// synchronous slot on the whole sequence; otherwise each segment goes
// out on the paced push path, in order.
func (l *LineChannel) Send(msg bus.OutboundMessage) error {
	if len(msg.Segments) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if msg.ReplyToken != "" {
		if err := l.client.Reply(ctx, msg.ReplyToken, msg.Segments); err != nil {
			return fmt.Errorf("line reply: %w", err)
		}
		return nil
	}

	for i, seg := range msg.Segments {
		if i > 0 {
			if err := l.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		if err := l.client.Push(ctx, msg.ChatID, seg); err != nil {
			return fmt.Errorf("line push: %w", err)
		}
	}
	return nil
}

func (l *LineChannel) Stop() error {
	if l.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.server.Shutdown(ctx); err != nil {
			log.Printf("[line] shutdown error: %v", err)
		}
	}
	log.Printf("[line] stopped")
	return nil
}

// SetClient replaces the API client (for testing).
func (l *LineChannel) SetClient(c LineClient) {
	l.client = c
}

// SetPacer replaces the pacer (for testing).
func (l *LineChannel) SetPacer(p Pacer) {
	l.pacer = p
}
