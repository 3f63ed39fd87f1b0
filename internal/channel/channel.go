package channel

import (
	"context"

	"github.com/stellarlinkco/kazubot/internal/bus"
)

// Channel is one chat transport. Start begins receiving inbound
// messages onto the bus; Send delivers one outbound message.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// BaseChannel carries the pieces every channel shares: its name, the
// bus, and the sender allow-list.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]struct{}
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string) BaseChannel {
	ch := BaseChannel{name: name, bus: b}
	if len(allowFrom) > 0 {
		ch.allowFrom = make(map[string]struct{}, len(allowFrom))
		for _, id := range allowFrom {
			ch.allowFrom[id] = struct{}{}
		}
	}
	return ch
}

func (c *BaseChannel) Name() string {
	return c.name
}

// IsAllowed reports whether the sender passes the allow-list. An empty
// list allows everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	_, ok := c.allowFrom[senderID]
	return ok
}
