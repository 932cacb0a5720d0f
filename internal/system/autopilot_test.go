package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/world"
)

func TestAutopilotBounces(t *testing.T) {
	reg, _ := corridor(t, 3, nil)
	agent := NewTrackedAgent()
	agent.SetPosition(at(5))
	ap := NewAutopilotSystem(agent, reg, 10)

	ap.Update(time.Second)
	if _, ok := agent.Position(); !ok {
		t.Fatal("position lost")
	}
	if p, _ := agent.Position(); p != at(5) {
		t.Fatalf("moved while disabled: %v", p)
	}

	ap.Enable()
	want := []float64{15, 25, 15, 5, 15}
	for i, x := range want {
		ap.Update(time.Second)
		if p, _ := agent.Position(); p != at(x) {
			t.Fatalf("step %d: position = %v, want x=%v", i, p, x)
		}
	}
}

func TestAutopilotPartialStep(t *testing.T) {
	reg, _ := corridor(t, 2, nil)
	agent := NewTrackedAgent()
	agent.SetPosition(at(5))
	ap := NewAutopilotSystem(agent, reg, 4)
	ap.Enable()
	ap.Update(time.Second)
	if p, _ := agent.Position(); p != at(9) {
		t.Fatalf("position = %v", p)
	}
}

func TestAutopilotSkipsBranches(t *testing.T) {
	reg, rooms := corridor(t, 3, nil)
	branch := world.NewRoom("B", world.NewBounds(mgl64.Vec3{15, 0, 10}, mgl64.Vec3{10, 10, 10}))
	branch.Branch = true
	all := append(reg.Rooms(), branch)
	reg.Clear()
	if err := reg.Populate(all); err != nil {
		t.Fatal(err)
	}

	agent := NewTrackedAgent()
	agent.SetPosition(rooms[2].Bounds.Center())
	ap := NewAutopilotSystem(agent, reg, 10)
	ap.Enable()
	ap.target = 2
	for i := 0; i < 6; i++ {
		ap.Update(time.Second)
		if p, _ := agent.Position(); p[2] != 0 {
			t.Fatalf("walked into the branch: %v", p)
		}
	}
}
