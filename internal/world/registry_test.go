package world

import (
	"errors"
	"testing"
)

func TestRegistryIndexOfUniqueAndStable(t *testing.T) {
	reg, rooms := corridor(t, 5)
	seen := map[int]bool{}
	for want, r := range rooms {
		got, ok := reg.IndexOf(r)
		if !ok || got != want {
			t.Fatalf("IndexOf(%s) = %d,%v want %d", r.Name, got, ok, want)
		}
		if seen[got] {
			t.Fatalf("index %d returned twice", got)
		}
		seen[got] = true
	}
	// Repeated queries give the same answer.
	for i := 0; i < 3; i++ {
		if got, _ := reg.IndexOf(rooms[3]); got != 3 {
			t.Fatalf("IndexOf drifted to %d", got)
		}
	}
}

func TestRegistryGetOutOfRange(t *testing.T) {
	reg, rooms := corridor(t, 3)
	for _, i := range []int{-1, 3, 100} {
		if r, ok := reg.Get(i); ok || r != nil {
			t.Fatalf("Get(%d) = %v,%v", i, r, ok)
		}
		if !reg.At(i).IsNone() {
			t.Fatalf("At(%d) not None", i)
		}
	}
	if r, ok := reg.Get(2); !ok || r != rooms[2] {
		t.Fatal("Get(2) wrong room")
	}
}

func TestRegistryNeighbours(t *testing.T) {
	reg, rooms := corridor(t, 3)
	if !reg.Previous(rooms[0]).IsNone() {
		t.Fatal("entry room has a previous room")
	}
	if !reg.Next(rooms[2]).IsNone() {
		t.Fatal("last room has a next room")
	}
	if !reg.Next(rooms[0]).Is(rooms[1]) || !reg.Previous(rooms[2]).Is(rooms[1]) {
		t.Fatal("middle neighbour wrong")
	}
	stranger := NewRoom("stranger", rooms[0].Bounds)
	if !reg.Next(stranger).IsNone() || !reg.Previous(stranger).IsNone() {
		t.Fatal("unknown room has neighbours")
	}
	if _, ok := reg.IndexOf(nil); ok {
		t.Fatal("nil room found")
	}
}

func TestRegistryPopulateReplacesWholesale(t *testing.T) {
	reg, old := corridor(t, 3)
	fresh := []*Room{NewRoom("A", old[0].Bounds), NewRoom("B", old[1].Bounds)}
	if err := reg.Populate(fresh); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d", reg.Len())
	}
	for _, r := range old {
		if _, ok := reg.IndexOf(r); ok {
			t.Fatalf("old room %s still indexed", r.Name)
		}
		if r.Index() != -1 {
			t.Fatalf("old room %s kept index %d", r.Name, r.Index())
		}
	}
}

func TestRegistryPopulateRejectsBadInput(t *testing.T) {
	reg, rooms := corridor(t, 2)
	dup := NewRoom("dup", rooms[0].Bounds)

	tests := []struct {
		name  string
		input []*Room
		want  error
	}{
		{"nil room", []*Room{dup, nil}, ErrNilRoom},
		{"duplicate", []*Room{dup, dup}, ErrDuplicateRoom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.Populate(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if reg.Len() != 2 {
				t.Fatalf("registry changed on error: len %d", reg.Len())
			}
			if i, ok := reg.IndexOf(rooms[1]); !ok || i != 1 {
				t.Fatal("previous contents lost on error")
			}
		})
	}
}

func TestRegistryRoomsIsACopy(t *testing.T) {
	reg, rooms := corridor(t, 2)
	out := reg.Rooms()
	out[0] = nil
	if r, _ := reg.Get(0); r != rooms[0] {
		t.Fatal("Rooms exposed the backing slice")
	}
	reg.Clear()
	if reg.Len() != 0 || rooms[0].Index() != -1 {
		t.Fatal("clear left rooms attached")
	}
}
