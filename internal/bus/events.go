package bus

import "time"

// InboundMessage is one user message event delivered by a channel.
// ReplyToken carries the single-use synchronous reply slot on channels
// that have one (LINE); it is empty on push-only channels.
type InboundMessage struct {
	Channel    string
	SenderID   string
	ChatID     string
	Content    string
	ReplyToken string
	Timestamp  time.Time
	Metadata   map[string]any
}

func (m *InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

// OutboundMessage is an ordered sequence of text segments for one chat.
// When ReplyToken is set the channel should spend it on the whole
// sequence; otherwise every segment goes out on the paced push path.
type OutboundMessage struct {
	Channel    string
	ChatID     string
	Segments   []string
	ReplyToken string
}
