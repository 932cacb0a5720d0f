package system

import (
	"time"

	"github.com/l1jgo/dungeon/internal/core/event"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/net"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

// DungeonInfo describes the dungeon the feed reports on.
type DungeonInfo interface {
	Seed() int64
	Flow() *data.Flow
}

// OutputSystem turns dungeon events into feed messages and flushes every
// session once per frame. Phase 4 (Output).
type OutputSystem struct {
	store   *net.SessionStore
	reg     *world.Registry
	info    DungeonInfo
	pending []net.Message
	log     *zap.Logger
}

func NewOutputSystem(store *net.SessionStore, reg *world.Registry, info DungeonInfo, bus *event.Bus, log *zap.Logger) *OutputSystem {
	s := &OutputSystem{store: store, reg: reg, info: info, log: log}
	event.Subscribe(bus, func(event.DungeonGenerated) {
		s.queue(net.MsgDungeonGenerated, s.Snapshot())
	})
	event.Subscribe(bus, func(ev event.PlayerChangedRoom) {
		s.queue(net.MsgRoomChanged, s.roomChanged(ev))
	})
	event.Subscribe(bus, func(ev event.RoomVisibilityChanged) {
		s.queue(net.MsgRoomVisibility, net.RoomVisibilityData{
			Room:    s.index(ev.Room),
			Name:    ev.Room.Name,
			Visible: ev.Visible,
		})
	})
	return s
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, msg := range s.pending {
		s.store.Broadcast(msg)
	}
	s.pending = s.pending[:0]
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// Pending returns the messages queued for the next flush.
func (s *OutputSystem) Pending() []net.Message { return s.pending }

// Welcome greets a new session with the current dungeon.
func (s *OutputSystem) Welcome(sess *net.Session) {
	sess.SendData(net.MsgWelcome, net.WelcomeData{Session: sess.ID})
	if s.reg.Len() > 0 {
		sess.SendData(net.MsgDungeonGenerated, s.Snapshot())
	}
}

// Snapshot describes the whole current dungeon.
func (s *OutputSystem) Snapshot() net.DungeonGeneratedData {
	out := net.DungeonGeneratedData{Seed: s.info.Seed()}
	if f := s.info.Flow(); f != nil {
		out.Flow = f.Address
	}
	s.reg.Each(func(i int, r *world.Room) {
		out.Rooms = append(out.Rooms, net.RoomInfo{
			Name:    r.Name,
			Index:   i,
			Branch:  r.Branch,
			Visible: r.Visible(),
			Min:     [3]float64(r.Bounds.Min),
			Max:     [3]float64(r.Bounds.Max),
		})
	})
	return out
}

func (s *OutputSystem) roomChanged(ev event.PlayerChangedRoom) net.RoomChangedData {
	d := net.RoomChangedData{From: -1, To: -1}
	if r, ok := ev.Old.Get(); ok {
		d.From, d.FromName = s.index(r), r.Name
	}
	if r, ok := ev.New.Get(); ok {
		d.To, d.ToName = s.index(r), r.Name
	}
	return d
}

func (s *OutputSystem) index(r *world.Room) int {
	if i, ok := s.reg.IndexOf(r); ok {
		return i
	}
	return -1
}

func (s *OutputSystem) queue(typ string, payload any) {
	msg, err := net.NewMessage(typ, payload)
	if err != nil {
		s.log.Error("encode feed message", zap.Error(err))
		return
	}
	s.pending = append(s.pending, msg)
}
