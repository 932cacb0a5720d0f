package dungeon

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/config"
	"github.com/l1jgo/dungeon/internal/core/ecs"
	"github.com/l1jgo/dungeon/internal/core/event"
	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTile struct {
	bounds world.Bounds
	room   *world.Room
}

func (t fakeTile) Bounds() world.Bounds { return t.bounds }
func (t fakeTile) Room() *world.Room    { return t.room }

// fakeGenerator lays out n rooms of width 10 along X on every call.
type fakeGenerator struct {
	n        int
	spawn    bool
	err      error
	requests []Request
}

func (g *fakeGenerator) Generate(_ context.Context, req Request) (*Result, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	seed := req.Seed
	if seed == 0 {
		seed = 4242
	}
	res := &Result{Seed: seed, Stats: Stats{MainPathRooms: g.n, TotalRooms: g.n}}
	for i := 0; i < g.n; i++ {
		x := float64(i * 10)
		b := world.BoundsFromCorners(mgl64.Vec3{x, 0, -5}, mgl64.Vec3{x + 10, 5, 5})
		r := world.NewRoom(fmt.Sprintf("R%d", i), world.Bounds{})
		if i == 0 && g.spawn {
			r.SetPlayerSpawn(mgl64.Vec3{5, 1, 0})
		}
		res.Tiles = append(res.Tiles, fakeTile{bounds: b, room: r})
	}
	return res, nil
}

type fakeAssets struct {
	res   data.LoadResult
	calls []string
}

func (a *fakeAssets) LoadAsync(_ context.Context, address string) <-chan data.LoadResult {
	a.calls = append(a.calls, address)
	ch := make(chan data.LoadResult, 1)
	ch <- a.res
	return ch
}

type fakeNav struct{ bakes, global int }

func (n *fakeNav) Bake([]*world.Room) error       { n.bakes++; return nil }
func (n *fakeNav) BakeGlobal([]*world.Room) error { n.global++; return nil }

type fixture struct {
	d      *Dungeon
	gen    *fakeGenerator
	assets *fakeAssets
	nav    *fakeNav
	bus    *event.Bus
	ents   *ecs.World
	logs   *observer.ObservedLogs
	events []event.PlayerChangedRoom
	built  int
}

func newFixture(t *testing.T, gen *fakeGenerator, res data.LoadResult) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		gen:    gen,
		assets: &fakeAssets{res: res},
		nav:    &fakeNav{},
		bus:    event.NewBus(),
		ents:   ecs.NewWorld(),
		logs:   logs,
	}
	cfg := config.DungeonConfig{FlowAddress: "Test.Flow", CullingEnabled: true}
	f.d = New(cfg, gen, f.assets, f.bus, f.ents, zap.New(core), WithNavMesh(f.nav))
	event.Subscribe(f.bus, func(ev event.PlayerChangedRoom) { f.events = append(f.events, ev) })
	event.Subscribe(f.bus, func(event.DungeonGenerated) { f.built++ })
	return f
}

func okFlow() data.LoadResult {
	return data.LoadResult{Flow: &data.Flow{Address: "Test.Flow"}}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.d.Start(context.Background())
	f.d.Update(0)
	if f.d.Loading() {
		t.Fatal("flow load still pending")
	}
}

func (f *fixture) errorLogged(msg string) bool {
	return f.logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage(msg).Len() > 0
}

func (f *fixture) room(i int) *world.Room {
	r, _ := f.d.Registry().Get(i)
	return r
}

func (f *fixture) walk(x float64) bool {
	f.d.Agent().SetPosition(mgl64.Vec3{x, 1, 0})
	return f.d.Tracker().Step()
}

func TestStartGenerates(t *testing.T) {
	f := newFixture(t, &fakeGenerator{n: 3, spawn: true}, okFlow())
	f.start(t)

	if !f.d.Initialized() || f.built != 1 {
		t.Fatalf("initialized = %t, generated events = %d", f.d.Initialized(), f.built)
	}
	if len(f.assets.calls) != 1 || f.assets.calls[0] != "Test.Flow" {
		t.Fatalf("asset requests = %v", f.assets.calls)
	}
	if f.d.Registry().Len() != 3 {
		t.Fatalf("rooms = %d", f.d.Registry().Len())
	}
	if st := f.d.Stats(); st.TotalRooms != 3 || st.MainPathRooms != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if f.d.Flow() == nil || f.d.Flow().Address != "Test.Flow" {
		t.Fatalf("flow = %+v", f.d.Flow())
	}
	if !f.d.Current().Is(f.room(0)) {
		t.Fatalf("current = %v", f.d.Current())
	}
	if len(f.events) != 0 {
		t.Fatalf("spawn placement notified: %+v", f.events)
	}
	if p, _ := f.d.Agent().Position(); p != (mgl64.Vec3{5, 1, 0}) {
		t.Fatalf("agent at %v", p)
	}
	if f.room(2).Visible() || !f.room(1).Visible() {
		t.Fatal("window not applied at spawn")
	}
	if f.room(1).Bounds.Min[0] != 10 {
		t.Fatalf("tile bounds not applied: %v", f.room(1).Bounds)
	}
	if f.nav.bakes != 1 {
		t.Fatalf("nav bakes = %d", f.nav.bakes)
	}
	if f.d.Seed() != 4242 {
		t.Fatalf("seed = %d", f.d.Seed())
	}
	f.d.Registry().Each(func(_ int, r *world.Room) {
		if r.ID.IsZero() || !f.ents.Alive(r.ID) {
			t.Fatalf("room %s has no live id", r.Name)
		}
	})
}

func TestThreeRoomWalk(t *testing.T) {
	f := newFixture(t, &fakeGenerator{n: 3, spawn: true}, okFlow())
	f.start(t)

	if !f.walk(15) || !f.walk(25) {
		t.Fatal("room change missed")
	}
	if len(f.events) != 2 {
		t.Fatalf("events = %d", len(f.events))
	}
	if !f.events[0].Old.Is(f.room(0)) || !f.events[0].New.Is(f.room(1)) {
		t.Fatalf("first = %v -> %v", f.events[0].Old, f.events[0].New)
	}
	if !f.events[1].Old.Is(f.room(1)) || !f.events[1].New.Is(f.room(2)) {
		t.Fatalf("second = %v -> %v", f.events[1].Old, f.events[1].New)
	}
	if f.room(0).Visible() || !f.room(1).Visible() || !f.room(2).Visible() {
		t.Fatal("window did not follow the player")
	}
}

func TestSkippedRoom(t *testing.T) {
	f := newFixture(t, &fakeGenerator{n: 3, spawn: true}, okFlow())
	f.start(t)

	f.walk(25)
	if len(f.events) != 1 || !f.events[0].Old.Is(f.room(0)) || !f.events[0].New.Is(f.room(2)) {
		t.Fatalf("events = %+v", f.events)
	}
}

func TestGenerationFailures(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		assets data.LoadResult
		msg    string
	}{
		{"flow missing", &fakeGenerator{n: 3, spawn: true}, data.LoadResult{Err: data.ErrFlowNotFound}, "could not find dungeon flow asset"},
		{"generator error", &fakeGenerator{err: errors.New("boom")}, okFlow(), "dungeon generation failed"},
		{"zero rooms", &fakeGenerator{n: 0}, okFlow(), "no rooms generated"},
		{"no spawn", &fakeGenerator{n: 3}, okFlow(), "starting room has no player spawn"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.gen, tc.assets)
			f.start(t)
			if f.d.Initialized() || f.built != 0 {
				t.Fatalf("initialized = %t, generated events = %d", f.d.Initialized(), f.built)
			}
			if !f.errorLogged(tc.msg) {
				t.Fatalf("missing error log %q, got %v", tc.msg, f.logs.All())
			}
			if f.d.Tracker().Active() {
				t.Fatal("tracker active after failure")
			}
			if f.walk(15) || len(f.events) != 0 {
				t.Fatal("tracking ran after failure")
			}
		})
	}
}

func TestFlowNotLoadedSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{n: 3, spawn: true}
	f := newFixture(t, gen, data.LoadResult{Err: data.ErrFlowNotFound})
	f.start(t)
	if len(gen.requests) != 0 {
		t.Fatal("generator ran without a flow")
	}
}

func TestRegenerate(t *testing.T) {
	gen := &fakeGenerator{n: 3, spawn: true}
	f := newFixture(t, gen, okFlow())
	f.start(t)
	f.walk(15)
	old := f.room(1)

	f.d.Generate(context.Background())

	if f.built != 2 || !f.d.Initialized() {
		t.Fatalf("generated events = %d", f.built)
	}
	if _, ok := f.d.RoomIndex(old); ok {
		t.Fatal("room of the replaced dungeon still indexed")
	}
	if !f.d.RoomPrevious(old).IsNone() || !f.d.RoomNext(old).IsNone() {
		t.Fatal("neighbours of a stale room")
	}
	if f.ents.Pending() != 3 {
		t.Fatalf("ids queued for release = %d", f.ents.Pending())
	}
	if !f.d.Current().Is(f.room(0)) {
		t.Fatalf("current = %v", f.d.Current())
	}
	if gen.requests[1].Seed != 4242 {
		t.Fatalf("regeneration seed = %d", gen.requests[1].Seed)
	}

	f.d.SetSeed(0)
	f.d.Generate(context.Background())
	if gen.requests[2].Seed != 0 {
		t.Fatalf("seed not reset: %d", gen.requests[2].Seed)
	}
}

func TestGenerateIsNotReentrant(t *testing.T) {
	gen := &fakeGenerator{n: 2, spawn: true}
	f := newFixture(t, gen, okFlow())
	event.Subscribe(f.bus, func(event.DungeonGenerated) {
		f.d.Generate(context.Background())
	})
	f.start(t)
	if len(gen.requests) != 1 {
		t.Fatalf("generator calls = %d", len(gen.requests))
	}
	if f.logs.FilterMessage("generation already running, request ignored").Len() != 1 {
		t.Fatal("reentrant call not reported")
	}
}

func TestToggleCulling(t *testing.T) {
	f := newFixture(t, &fakeGenerator{n: 5, spawn: true}, okFlow())
	f.start(t)

	f.d.ToggleCulling()
	if f.d.CullingEnabled() {
		t.Fatal("culling still enabled")
	}
	for i := 0; i < 5; i++ {
		if !f.room(i).Visible() {
			t.Fatalf("room %d hidden with culling off", i)
		}
	}

	f.walk(35)
	if len(f.events) != 1 {
		t.Fatal("tracking stopped with culling off")
	}

	f.d.SetCulling(true)
	for i := 0; i < 5; i++ {
		if want := i >= 2; f.room(i).Visible() != want {
			t.Fatalf("room %d visible = %t", i, f.room(i).Visible())
		}
	}
}

func TestNeighbourQueries(t *testing.T) {
	f := newFixture(t, &fakeGenerator{n: 3, spawn: true}, okFlow())
	f.start(t)

	if !f.d.RoomPrevious(f.room(0)).IsNone() || !f.d.RoomNext(f.room(2)).IsNone() {
		t.Fatal("path ends have neighbours")
	}
	if !f.d.RoomNext(f.room(0)).Is(f.room(1)) || !f.d.RoomPrevious(f.room(2)).Is(f.room(1)) {
		t.Fatal("wrong neighbours")
	}
	if i, ok := f.d.RoomIndex(f.room(2)); !ok || i != 2 {
		t.Fatalf("index = %d, %t", i, ok)
	}
}

func TestPreloadedFlow(t *testing.T) {
	gen := &fakeGenerator{n: 2, spawn: true}
	core, _ := observer.New(zapcore.InfoLevel)
	assets := &fakeAssets{}
	d := New(config.DungeonConfig{FlowAddress: "X"}, gen, assets, event.NewBus(), ecs.NewWorld(), zap.New(core),
		WithFlow(&data.Flow{Address: "X"}))
	d.Start(context.Background())
	if !d.Initialized() || len(assets.calls) != 0 {
		t.Fatalf("initialized = %t, asset calls = %d", d.Initialized(), len(assets.calls))
	}
	d.BakeGlobalNavMesh()
}
