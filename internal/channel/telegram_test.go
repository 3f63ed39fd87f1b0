package channel

import (
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stellarlinkco/kazubot/internal/bus"
	"github.com/stellarlinkco/kazubot/internal/config"
)

type mockTelegramBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	sendErr error
	updates chan tgbotapi.Update
	stopped bool
}

func (m *mockTelegramBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if m.updates == nil {
		m.updates = make(chan tgbotapi.Update)
	}
	return m.updates
}

func (m *mockTelegramBot) StopReceivingUpdates() {
	m.stopped = true
}

func (m *mockTelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramBot) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockTelegramBot) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "testbot"}
}

func TestNewTelegramChannel_RequiresToken(t *testing.T) {
	b := bus.NewMessageBus(1)
	if _, err := NewTelegramChannel(config.TelegramConfig{}, b); err == nil {
		t.Error("missing token accepted")
	}
}

func TestTelegramChannel_SendSegmentsInOrder(t *testing.T) {
	b := bus.NewMessageBus(1)
	ch, err := NewTelegramChannel(config.TelegramConfig{Token: "t"}, b)
	if err != nil {
		t.Fatalf("NewTelegramChannel: %v", err)
	}
	bot := &mockTelegramBot{}
	ch.SetBot(bot)
	ch.SetPacer(NopPacer())

	err = ch.Send(bus.OutboundMessage{
		Channel:  "telegram",
		ChatID:   "12345",
		Segments: []string{"a", "b", "c"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(bot.sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(bot.sent))
	}
	for i, want := range []string{"a", "b", "c"} {
		msg, ok := bot.sent[i].(tgbotapi.MessageConfig)
		if !ok {
			t.Fatalf("sent[%d] is %T, want MessageConfig", i, bot.sent[i])
		}
		if msg.Text != want || msg.ChatID != 12345 {
			t.Errorf("sent[%d] = {chat %d, %q}, want {chat 12345, %q}", i, msg.ChatID, msg.Text, want)
		}
	}
}

func TestTelegramChannel_SendRejectsBadChatID(t *testing.T) {
	b := bus.NewMessageBus(1)
	ch, _ := NewTelegramChannel(config.TelegramConfig{Token: "t"}, b)
	ch.SetBot(&mockTelegramBot{})
	ch.SetPacer(NopPacer())

	err := ch.Send(bus.OutboundMessage{ChatID: "not-a-number", Segments: []string{"a"}})
	if err == nil {
		t.Error("non-numeric chat id accepted")
	}
}

func TestTelegramChannel_SendWithoutBotFails(t *testing.T) {
	b := bus.NewMessageBus(1)
	ch, _ := NewTelegramChannel(config.TelegramConfig{Token: "t"}, b)

	if err := ch.Send(bus.OutboundMessage{ChatID: "1", Segments: []string{"a"}}); err == nil {
		t.Error("send before Start accepted")
	}
}

func TestTelegramChannel_SendPropagatesBotError(t *testing.T) {
	b := bus.NewMessageBus(1)
	ch, _ := NewTelegramChannel(config.TelegramConfig{Token: "t"}, b)
	ch.SetBot(&mockTelegramBot{sendErr: errors.New("forbidden")})
	ch.SetPacer(NopPacer())

	if err := ch.Send(bus.OutboundMessage{ChatID: "1", Segments: []string{"a"}}); err == nil {
		t.Error("bot error swallowed")
	}
}

func TestTelegramChannel_HandleMessageAllowList(t *testing.T) {
	b := bus.NewMessageBus(4)
	ch, _ := NewTelegramChannel(config.TelegramConfig{Token: "t", AllowFrom: []string{"100"}}, b)

	allowed := &tgbotapi.Message{
		Text: "hi",
		From: &tgbotapi.User{ID: 100, UserName: "friend"},
		Chat: &tgbotapi.Chat{ID: 100},
		Date: 1748860200,
	}
	stranger := &tgbotapi.Message{
		Text: "hi",
		From: &tgbotapi.User{ID: 200, UserName: "stranger"},
		Chat: &tgbotapi.Chat{ID: 200},
	}

	ch.handleMessage(allowed)
	ch.handleMessage(stranger)

	select {
	case msg := <-b.Inbound:
		if msg.SenderID != "100" || msg.Content != "hi" {
			t.Errorf("unexpected inbound: %+v", msg)
		}
	default:
		t.Fatal("allowed message missing from bus")
	}
	select {
	case msg := <-b.Inbound:
		t.Errorf("stranger message reached the bus: %+v", msg)
	default:
	}
}

func TestTelegramChannel_HandleMessageIgnoresNonText(t *testing.T) {
	b := bus.NewMessageBus(1)
	ch, _ := NewTelegramChannel(config.TelegramConfig{Token: "t"}, b)

	ch.handleMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1},
	})

	select {
	case msg := <-b.Inbound:
		t.Errorf("empty-text message reached the bus: %+v", msg)
	default:
	}
}
