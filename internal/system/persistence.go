package system

import (
	"context"
	"time"

	"github.com/l1jgo/dungeon/internal/core/event"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/persist"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

// RunStore is the persistence the history system writes to.
type RunStore interface {
	InsertRun(ctx context.Context, run persist.RunRow) (int64, error)
	InsertTransitions(ctx context.Context, rows []persist.TransitionRow) error
}

type pendingRun struct {
	seq int
	row persist.RunRow
}

type queuedTransition struct {
	run  int // local run sequence
	from int
	to   int
	at   time.Time
}

// PersistenceSystem batches dungeon runs and room transitions and writes
// them every interval frames. Phase 5 (Persist).
type PersistenceSystem struct {
	store    RunStore
	reg      *world.Registry
	log      *zap.Logger
	interval int
	ticks    int

	seq         int           // local sequence of the latest run
	pendingRuns []pendingRun  // not yet inserted, in seq order
	runIDs      map[int]int64 // seq -> database id
	queue       []queuedTransition
	now         func() time.Time
}

func NewPersistenceSystem(store RunStore, bus *event.Bus, reg *world.Registry, log *zap.Logger, intervalFrames int) *PersistenceSystem {
	if intervalFrames < 1 {
		intervalFrames = 1
	}
	s := &PersistenceSystem{
		store:    store,
		reg:      reg,
		log:      log,
		interval: intervalFrames,
		runIDs:   make(map[int]int64),
		now:      time.Now,
	}
	event.Subscribe(bus, s.onRoomChanged)
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.Flush()
}

// RecordRun starts a new run; transitions from now on belong to it.
func (s *PersistenceSystem) RecordRun(run persist.RunRow) {
	s.seq++
	s.pendingRuns = append(s.pendingRuns, pendingRun{seq: s.seq, row: run})
}

func (s *PersistenceSystem) onRoomChanged(ev event.PlayerChangedRoom) {
	if s.seq == 0 {
		return
	}
	to, ok := s.reg.IndexOf(ev.New.Room())
	if !ok {
		return
	}
	from := -1
	if i, ok := s.reg.IndexOf(ev.Old.Room()); ok {
		from = i
	}
	s.queue = append(s.queue, queuedTransition{run: s.seq, from: from, to: to, at: s.now()})
}

// Pending returns the number of queued transitions.
func (s *PersistenceSystem) Pending() int { return len(s.queue) }

// Flush writes pending runs first, then every transition whose run has a
// database id. Transitions of a run that failed to insert are dropped.
func (s *PersistenceSystem) Flush() {
	if len(s.pendingRuns) == 0 && len(s.queue) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, p := range s.pendingRuns {
		id, err := s.store.InsertRun(ctx, p.row)
		if err != nil {
			s.log.Error("save dungeon run failed", zap.Int64("seed", p.row.Seed), zap.Error(err))
			continue
		}
		s.runIDs[p.seq] = id
	}
	s.pendingRuns = s.pendingRuns[:0]

	rows := make([]persist.TransitionRow, 0, len(s.queue))
	dropped := 0
	for _, q := range s.queue {
		id, ok := s.runIDs[q.run]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, persist.TransitionRow{RunID: id, FromIndex: q.from, ToIndex: q.to, At: q.at})
	}
	s.queue = s.queue[:0]
	if dropped > 0 {
		s.log.Warn("dropped transitions of unsaved run", zap.Int("count", dropped))
	}
	// Only the latest run can still receive transitions.
	for seq := range s.runIDs {
		if seq != s.seq {
			delete(s.runIDs, seq)
		}
	}
	if len(rows) == 0 {
		return
	}
	if err := s.store.InsertTransitions(ctx, rows); err != nil {
		s.log.Error("save room transitions failed", zap.Int("count", len(rows)), zap.Error(err))
	}
}
