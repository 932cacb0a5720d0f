package system

import (
	"time"

	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/world"
)

// AutopilotSystem walks the agent through the centres of the main-path
// rooms, turning around at either end. Used for headless runs without a
// connected client. Phase 2 (Update).
type AutopilotSystem struct {
	agent  *TrackedAgent
	reg    *world.Registry
	speed  float64 // world units per second
	target int     // registry index of the waypoint being approached
	dir    int
	on     bool
}

func NewAutopilotSystem(agent *TrackedAgent, reg *world.Registry, speed float64) *AutopilotSystem {
	return &AutopilotSystem{agent: agent, reg: reg, speed: speed, dir: 1}
}

func (s *AutopilotSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Enable starts walking from the entry room.
func (s *AutopilotSystem) Enable() {
	s.on = true
	s.target = 0
	s.dir = 1
}

func (s *AutopilotSystem) Disable() { s.on = false }

func (s *AutopilotSystem) Enabled() bool { return s.on }

func (s *AutopilotSystem) Update(dt time.Duration) {
	if !s.on || s.speed <= 0 {
		return
	}
	pos, ok := s.agent.Position()
	if !ok {
		return
	}
	last := s.lastMain()
	if last < 0 {
		return
	}
	budget := s.speed * dt.Seconds()
	for hops := 0; budget > 0 && hops <= last+1; hops++ {
		if s.target > last {
			s.target = last
		}
		r, _ := s.reg.Get(s.target)
		wp := r.Bounds.Center()
		delta := wp.Sub(pos)
		dist := delta.Len()
		if dist > budget {
			pos = pos.Add(delta.Mul(budget / dist))
			break
		}
		pos = wp
		budget -= dist
		s.advance(last)
	}
	s.agent.SetPosition(pos)
}

// advance picks the next main-path waypoint, bouncing at the path ends.
func (s *AutopilotSystem) advance(last int) {
	if last == 0 {
		return
	}
	for turn := 0; turn < 2; turn++ {
		for next := s.target + s.dir; next >= 0 && next <= last; next += s.dir {
			if r, ok := s.reg.Get(next); ok && !r.Branch {
				s.target = next
				return
			}
		}
		s.dir = -s.dir
	}
}

func (s *AutopilotSystem) lastMain() int {
	last := -1
	s.reg.Each(func(i int, r *world.Room) {
		if !r.Branch {
			last = i
		}
	})
	return last
}
