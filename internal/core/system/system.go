package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session queues, apply positions
	PhasePreUpdate               // 1: resolve pending asset loads, start generation
	PhaseUpdate                  // 2: move the agent (autopilot)
	PhaseLateUpdate              // 3: room tracking + culling, after positions settled
	PhaseOutput                  // 4: flush session output
	PhasePersist                 // 5: batch save run history
	PhaseCleanup                 // 6: release rooms of replaced dungeons
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhaseLateUpdate:
		return "late-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
