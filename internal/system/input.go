package system

import (
	"time"

	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/net/packet"
	"go.uber.org/zap"
)

// SessionSource is where sessions come from; *net.Server in production.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(id uint64)
}

// InputSystem drains message queues from all sessions and dispatches them
// through the registry. Phase 0 (Input).
type InputSystem struct {
	src        SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	onJoin     func(*net.Session)
	log        *zap.Logger
}

// NewInputSystem wires the session source to the registry. onJoin, if
// set, runs once for every accepted session.
func NewInputSystem(src SessionSource, registry *packet.Registry, store *net.SessionStore, maxPerTick int, onJoin func(*net.Session), log *zap.Logger) *InputSystem {
	return &InputSystem{
		src:        src,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		onJoin:     onJoin,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.src.NewSessions():
			s.store.Add(sess)
			if s.onJoin != nil {
				s.onJoin(sess)
			}
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.src.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.log.Info("client disconnected", zap.Uint64("session", id))
			s.src.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

	drain:
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case msg := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), packet.NewReader(msg.Type, msg.Data)); err != nil {
					s.log.Debug("message dispatch error",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				break drain
			}
		}
	}
}
