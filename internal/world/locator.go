package world

import "github.com/go-gl/mathgl/mgl64"

// Locator resolves world positions to rooms of one registry.
//
// Dungeons come out of the generator as a mostly linear path, so a moving
// player almost always steps into the next or previous room. With a hint
// those two are tested first and the full scan only runs for teleports,
// branch rooms and the first placement.
type Locator struct {
	reg    *Registry
	probes int
}

func NewLocator(reg *Registry) *Locator {
	return &Locator{reg: reg}
}

// Locate returns the room whose bounds contain pos.
//
// Without a hint the registry is scanned in path order and the entry room
// is returned when nothing contains pos. With a hint the hint's next and
// previous rooms are tried, then every other room; when nothing contains
// pos the hint itself is returned. A hint this registry does not hold is
// treated as no hint. Only an empty registry yields None.
func (l *Locator) Locate(pos mgl64.Vec3, hint RoomRef) RoomRef {
	from, ok := hint.Get()
	if !ok {
		return l.scan(pos)
	}
	if _, known := l.reg.IndexOf(from); !known {
		return l.scan(pos)
	}

	next := l.reg.Next(from)
	if r, ok := next.Get(); ok && l.contains(r, pos) {
		return next
	}
	prev := l.reg.Previous(from)
	if r, ok := prev.Get(); ok && l.contains(r, pos) {
		return prev
	}
	for _, r := range l.reg.rooms {
		if r == from || next.Is(r) || prev.Is(r) {
			continue
		}
		if l.contains(r, pos) {
			return Some(r)
		}
	}
	return hint
}

func (l *Locator) scan(pos mgl64.Vec3) RoomRef {
	for _, r := range l.reg.rooms {
		if l.contains(r, pos) {
			return Some(r)
		}
	}
	return l.reg.At(0)
}

func (l *Locator) contains(r *Room, pos mgl64.Vec3) bool {
	l.probes++
	return r.Bounds.Contains(pos)
}

// Probes returns the number of containment tests run so far.
func (l *Locator) Probes() int { return l.probes }
