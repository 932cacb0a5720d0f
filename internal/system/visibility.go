package system

import (
	"github.com/l1jgo/dungeon/internal/core/event"
	"github.com/l1jgo/dungeon/internal/world"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// VisibilityWindow culls every room except the current one and its path
// neighbours. It has no state of its own beyond the enabled flag: each
// Recompute rebuilds the visible set from the registry.
//
// Every room whose state actually flips publishes RoomVisibilityChanged.
type VisibilityWindow struct {
	reg     *world.Registry
	bus     *event.Bus
	enabled bool
	log     *zap.Logger
}

func NewVisibilityWindow(reg *world.Registry, bus *event.Bus, enabled bool, log *zap.Logger) *VisibilityWindow {
	return &VisibilityWindow{reg: reg, bus: bus, enabled: enabled, log: log}
}

func (w *VisibilityWindow) Enabled() bool { return w.enabled }

// SetEnabled only flips the flag; the caller recomputes.
func (w *VisibilityWindow) SetEnabled(enabled bool) { w.enabled = enabled }

// Recompute applies the window around current and returns how many rooms
// changed state. With culling disabled, or with no current room (or one
// the registry no longer holds), every room is shown.
func (w *VisibilityWindow) Recompute(current world.RoomRef) int {
	cur, ok := current.Get()
	if ok {
		_, ok = w.reg.IndexOf(cur)
	}
	if !w.enabled || !ok {
		changed := 0
		w.reg.Each(func(_ int, r *world.Room) {
			if w.apply(r, true) {
				changed++
			}
		})
		return changed
	}

	visible := mapset.New[*world.Room]()
	visible.Put(cur)
	if prev, ok := w.reg.Previous(cur).Get(); ok {
		visible.Put(prev)
	}
	if next, ok := w.reg.Next(cur).Get(); ok {
		visible.Put(next)
	}

	changed := 0
	w.reg.Each(func(_ int, r *world.Room) {
		if w.apply(r, visible.Has(r)) {
			changed++
		}
	})
	if changed > 0 {
		w.log.Debug("culling window moved",
			zap.String("room", cur.Name),
			zap.Int("visible", visible.Size()),
			zap.Int("changed", changed),
		)
	}
	return changed
}

func (w *VisibilityWindow) apply(r *world.Room, visible bool) bool {
	if !r.SetCull(!visible) {
		return false
	}
	event.Emit(w.bus, event.RoomVisibilityChanged{Room: r, Visible: visible})
	return true
}

// Visible lists the rooms currently shown, in path order.
func (w *VisibilityWindow) Visible() []*world.Room {
	var out []*world.Room
	w.reg.Each(func(_ int, r *world.Room) {
		if r.Visible() {
			out = append(out, r)
		}
	})
	return out
}
