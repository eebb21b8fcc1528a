package messagebus

import (
	"github.com/burenotti/healthtrack/internal/domain"
	"log/slog"
	"sync"
)

type EventHandler func(event domain.Event) error

// MessageBus fans domain events out to handlers in their own goroutines.
// Register is not safe to call once events are flowing.
type MessageBus struct {
	logger   *slog.Logger
	handlers map[string][]EventHandler
	any      []EventHandler
	wg       sync.WaitGroup
}

func New(logger *slog.Logger) *MessageBus {
	return &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

func (b *MessageBus) Register(eventType string, handler EventHandler) {
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// RegisterAll subscribes handler to every event type.
func (b *MessageBus) RegisterAll(handler EventHandler) {
	b.any = append(b.any, handler)
}

func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	for _, event := range events {
		for _, handler := range b.handlersFor(event.Type()) {
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				if err := handler(event); err != nil {
					b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
				}
			}()
		}
	}
	return nil
}

func (b *MessageBus) handlersFor(eventType string) []EventHandler {
	specific := b.handlers[eventType]
	handlers := make([]EventHandler, 0, len(specific)+len(b.any))
	handlers = append(handlers, specific...)
	return append(handlers, b.any...)
}

// Close waits for in-flight handlers.
func (b *MessageBus) Close() {
	b.wg.Wait()
}
