package event

import (
	"sync"

	"go.uber.org/zap"
)

// Handler consumes one event.  Returning an error marks the delivery
// failed for logging purposes only; the publish continues to the next
// subscriber regardless.
type Handler func(Event) error

// Bus is a synchronous subscriber registry.  Publish invokes every
// subscriber in registration order on the caller's goroutine, after
// the caller has committed the state change the event describes.
type Bus struct {
	mu   sync.RWMutex
	subs []Handler
	log  *zap.Logger
}

// NewBus returns an empty registry.  The logger must be non-nil.
func NewBus(log *zap.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, h)
}

// Publish delivers the event to every subscriber.  Errors and panics
// are logged and swallowed so notification failure can never roll back
// or block the mutation that produced the event.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]Handler, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, h := range subs {
		b.deliver(h, ev)
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked",
				zap.String("event_id", ev.ID),
				zap.String("event_type", string(ev.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	if err := h(ev); err != nil {
		b.log.Warn("event subscriber failed",
			zap.String("event_id", ev.ID),
			zap.String("event_type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
