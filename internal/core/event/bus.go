package event

import (
	"reflect"
	"sync"
)

// Bus is a synchronous observer registry. Handlers are keyed by event type
// and called in registration order before Emit returns. There is no
// buffering and no cancellation: every handler sees every event.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[reflect.Type][]subscriber
}

type subscriber struct {
	id uint64
	fn any // func(T) for the keyed T
}

// Handle identifies one registration and is used to unsubscribe it.
type Handle struct {
	typ reflect.Type
	id  uint64
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]subscriber),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.nextID++
	b.handlers[t] = append(b.handlers[t], subscriber{id: b.nextID, fn: fn})
	return Handle{typ: t, id: b.nextID}
}

// Unsubscribe removes a registration. It reports false when the handle was
// already removed. Safe to call from inside a handler; an in-flight Emit
// still finishes with the handler list it started with.
func (b *Bus) Unsubscribe(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[h.typ]
	for i, s := range subs {
		if s.id != h.id {
			continue
		}
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, h.typ)
		} else {
			b.handlers[h.typ] = next
		}
		return true
	}
	return false
}

// Emit delivers ev to every handler subscribed to T, in order.
func Emit[T any](b *Bus, ev T) {
	b.mu.Lock()
	subs := b.handlers[typeKey[T]()]
	b.mu.Unlock()
	for _, s := range subs {
		s.fn.(func(T))(ev)
	}
}

// Count returns the number of handlers registered for T.
func Count[T any](b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[typeKey[T]()])
}
