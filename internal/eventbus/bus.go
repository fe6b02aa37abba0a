// Package eventbus is an in-process, asynchronous bus for build events.
// Events are delivered in publish order by a single dispatcher so a
// write followed by a remove of the same file is never reordered.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const defaultBufferSize = 256

// EventBus publishes build events to subscribers.
type EventBus interface {
	// Publish enqueues an event. It never blocks: when the buffer is full
	// or the bus is closed the event is dropped and a warning is logged.
	Publish(kind Kind, path, dest string)

	// Subscribe registers a listener called for every event.
	Subscribe(listener Listener)

	// Close stops accepting events and waits until queued ones are delivered.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	logger    *slog.Logger
	mu        sync.RWMutex
	listeners []Listener
	closed    bool
	done      chan struct{}
}

// New creates a bus with room for buffer pending events; buffer <= 0
// selects the default.
func New(logger *slog.Logger, buffer int) EventBus {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	b := &inMemoryBus{
		ch:     make(chan Event, buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *inMemoryBus) run() {
	defer close(b.done)
	for e := range b.ch {
		b.dispatch(e)
	}
}

func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event listener panicked",
						slog.String("kind", string(e.Kind)),
						slog.Any("panic", r),
					)
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(kind Kind, path, dest string) {
	e := Event{Kind: kind, Path: path, Dest: dest, Timestamp: time.Now()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("event bus closed, dropping event", slog.String("kind", string(kind)))
		return
	}
	select {
	case b.ch <- e:
	default:
		b.logger.Warn("event buffer full, dropping event",
			slog.String("kind", string(kind)),
			slog.String("path", path),
		)
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func (b *inMemoryBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()
	<-b.done
}
