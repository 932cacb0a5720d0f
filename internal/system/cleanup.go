package system

import (
	"time"

	"github.com/l1jgo/dungeon/internal/core/ecs"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
)

// CleanupSystem releases the room IDs of replaced dungeons at frame end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.world.Pending() > 0 {
		s.world.FlushDestroyQueue()
	}
}
