package world

// RoomRef is an optional room: either None or Some(room). It is comparable
// with ==, and its zero value is None.
type RoomRef struct {
	room *Room
}

// NoRoom is the None value.
var NoRoom = RoomRef{}

// Some wraps a room. Some(nil) is None.
func Some(r *Room) RoomRef { return RoomRef{room: r} }

// Get unwraps the reference.
func (r RoomRef) Get() (*Room, bool) { return r.room, r.room != nil }

func (r RoomRef) IsNone() bool { return r.room == nil }

// Is reports whether r holds exactly room. Never true for a nil room.
func (r RoomRef) Is(room *Room) bool { return room != nil && r.room == room }

// Room returns the wrapped room or nil.
func (r RoomRef) Room() *Room { return r.room }

func (r RoomRef) String() string { return r.room.String() }
