package world

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

var (
	ErrNilRoom       = errors.New("nil room")
	ErrDuplicateRoom = errors.New("room listed twice")
)

// Registry is the ordered room sequence of the current dungeon. Order is
// path order and index 0 is the entry room. The dungeon controller is the
// only writer; everything else reads.
type Registry struct {
	rooms []*Room
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Populate replaces the whole registry. On error the previous contents are
// kept untouched.
func (g *Registry) Populate(rooms []*Room) error {
	seen := mapset.New[*Room]()
	next := make([]*Room, len(rooms))
	for i, r := range rooms {
		if r == nil {
			return fmt.Errorf("populate index %d: %w", i, ErrNilRoom)
		}
		if seen.Has(r) {
			return fmt.Errorf("populate index %d (%s): %w", i, r.Name, ErrDuplicateRoom)
		}
		seen.Put(r)
		next[i] = r
	}
	g.detach()
	for i, r := range next {
		r.index = i
	}
	g.rooms = next
	return nil
}

// Clear empties the registry.
func (g *Registry) Clear() {
	g.detach()
	g.rooms = nil
}

func (g *Registry) detach() {
	for _, r := range g.rooms {
		r.index = -1
	}
}

func (g *Registry) Len() int { return len(g.rooms) }

// Get returns the room at index, or false when out of range.
func (g *Registry) Get(index int) (*Room, bool) {
	if index < 0 || index >= len(g.rooms) {
		return nil, false
	}
	return g.rooms[index], true
}

// At is Get as a RoomRef.
func (g *Registry) At(index int) RoomRef {
	r, _ := g.Get(index)
	return Some(r)
}

// IndexOf returns the room's position, or false for rooms this registry
// does not hold (including rooms of a replaced dungeon).
func (g *Registry) IndexOf(r *Room) (int, bool) {
	if r == nil {
		return -1, false
	}
	i := r.index
	if i < 0 || i >= len(g.rooms) || g.rooms[i] != r {
		return -1, false
	}
	return i, true
}

// Previous returns the room one step back along the path.
func (g *Registry) Previous(r *Room) RoomRef {
	i, ok := g.IndexOf(r)
	if !ok {
		return NoRoom
	}
	return g.At(i - 1)
}

// Next returns the room one step forward along the path.
func (g *Registry) Next(r *Room) RoomRef {
	i, ok := g.IndexOf(r)
	if !ok {
		return NoRoom
	}
	return g.At(i + 1)
}

// Rooms returns a copy of the room sequence.
func (g *Registry) Rooms() []*Room {
	out := make([]*Room, len(g.rooms))
	copy(out, g.rooms)
	return out
}

// Each calls fn for every room in path order.
func (g *Registry) Each(fn func(i int, r *Room)) {
	for i, r := range g.rooms {
		fn(i, r)
	}
}
