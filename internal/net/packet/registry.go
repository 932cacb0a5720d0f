package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState is what a client is allowed to do.
type SessionState int

const (
	StateObserver   SessionState = iota // receives the feed only
	StateController                     // may drive the tracked player
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateObserver:
		return "Observer"
	case StateController:
		return "Controller"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for message handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps message types to handlers with state-based access control.
type Registry struct {
	handlers map[string]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*handlerEntry),
		log:      log,
	}
}

// Register maps a message type to a handler, restricted to the given
// session states.
func (reg *Registry) Register(typ string, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[typ] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for typ, validates the session state, and
// calls the handler. Unknown types are ignored.
func (reg *Registry) Dispatch(sess any, state SessionState, r *Reader) error {
	if r.Type() == "" {
		return fmt.Errorf("message without type")
	}
	reg.log.Debug("message received",
		zap.String("type", r.Type()),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[r.Type()]
	if !ok {
		reg.log.Debug("unknown message type", zap.String("type", r.Type()))
		return nil
	}

	if !entry.allowedStates[state] {
		return fmt.Errorf("message %q not allowed in state %s", r.Type(), state)
	}

	return reg.safeCall(entry.fn, sess, r)
}

// safeCall executes a handler with panic recovery to prevent a single
// bad message from crashing the entire game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", r.Type()),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %q: %v", r.Type(), rec)
		}
	}()
	fn(sess, r)
	return nil
}
