// Package navmesh derives walkable connectivity from room bounds. Rooms
// are linked when their boxes touch.
package navmesh

import (
	"errors"
	"fmt"

	"github.com/l1jgo/dungeon/internal/world"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

var ErrUnreachable = errors.New("rooms unreachable from entry")

// Mesh is the result of one bake.
type Mesh struct {
	Links  map[*world.Room][]*world.Room
	Global bool
	Area   world.Bounds // union of all rooms
}

// Neighbours returns the rooms linked to r.
func (m *Mesh) Neighbours(r *world.Room) []*world.Room {
	if m == nil {
		return nil
	}
	return m.Links[r]
}

// Baker implements dungeon.NavMeshBaker. Accessed only from the game loop
// goroutine.
type Baker struct {
	eps  float64
	mesh *Mesh
	log  *zap.Logger
}

func NewBaker(eps float64, log *zap.Logger) *Baker {
	return &Baker{eps: eps, log: log}
}

// Mesh returns the last bake, or nil.
func (b *Baker) Mesh() *Mesh { return b.mesh }

// Bake links touching rooms and checks every room can be reached from the
// first one. The mesh is kept even when some rooms are unreachable.
func (b *Baker) Bake(rooms []*world.Room) error {
	m := &Mesh{Links: make(map[*world.Room][]*world.Room, len(rooms))}
	links := 0
	for i, r := range rooms {
		if i == 0 {
			m.Area = r.Bounds
		} else {
			m.Area = m.Area.Union(r.Bounds)
		}
		for _, o := range rooms[i+1:] {
			if r.Bounds.Touches(o.Bounds, b.eps) {
				m.Links[r] = append(m.Links[r], o)
				m.Links[o] = append(m.Links[o], r)
				links++
			}
		}
	}
	b.mesh = m
	if len(rooms) == 0 {
		return nil
	}

	reached := reachable(m, rooms[0])
	b.log.Debug("nav mesh baked",
		zap.Int("rooms", len(rooms)),
		zap.Int("links", links),
		zap.Int("reachable", reached.Size()),
	)
	if reached.Size() != len(rooms) {
		return fmt.Errorf("%w: %d of %d", ErrUnreachable, len(rooms)-reached.Size(), len(rooms))
	}
	return nil
}

// BakeGlobal bakes a single surface over the union of all rooms.
func (b *Baker) BakeGlobal(rooms []*world.Room) error {
	if len(rooms) == 0 {
		return errors.New("no rooms to bake")
	}
	m := &Mesh{Links: map[*world.Room][]*world.Room{}, Global: true, Area: rooms[0].Bounds}
	for _, r := range rooms[1:] {
		m.Area = m.Area.Union(r.Bounds)
	}
	b.mesh = m
	b.log.Debug("global nav mesh baked", zap.Stringer("area", m.Area))
	return nil
}

func reachable(m *Mesh, start *world.Room) mapset.Set[*world.Room] {
	visited := mapset.New[*world.Room]()
	queue := []*world.Room{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited.Has(cur) {
			continue
		}
		visited.Put(cur)
		for _, n := range m.Links[cur] {
			if !visited.Has(n) {
				queue = append(queue, n)
			}
		}
	}
	return visited
}
