package dungeon

import (
	"context"
	"time"

	"github.com/l1jgo/dungeon/internal/config"
	"github.com/l1jgo/dungeon/internal/core/ecs"
	"github.com/l1jgo/dungeon/internal/core/event"
	coresys "github.com/l1jgo/dungeon/internal/core/system"
	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/system"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

// Dungeon owns the room registry of the current dungeon and everything
// built on it: the locator, the culling window and the transition tracker.
// It runs as a PreUpdate system to pick up the asynchronous flow load.
// Accessed only from the game loop goroutine.
//
// Failures (missing flow, generator error, empty dungeon, no entry spawn)
// are logged and abort the attempt; they never panic and are not retried.
type Dungeon struct {
	cfg  config.DungeonConfig
	seed int64
	flow *data.Flow

	gen      Generator
	assets   AssetLoader
	nav      NavMeshBaker
	behavior world.Behavior

	bus     *event.Bus
	ents    *ecs.World
	reg     *world.Registry
	locator *world.Locator
	window  *system.VisibilityWindow
	agent   *system.TrackedAgent
	tracker *system.RoomTransitionSystem

	pending     <-chan data.LoadResult
	loadCtx     context.Context
	generating  bool
	initialized bool
	stats       Stats

	log *zap.Logger
}

type Option func(*Dungeon)

// WithNavMesh sets the baker run after every generation.
func WithNavMesh(b NavMeshBaker) Option {
	return func(d *Dungeon) { d.nav = b }
}

// WithRoomBehavior attaches b to generated rooms that carry no behavior.
func WithRoomBehavior(b world.Behavior) Option {
	return func(d *Dungeon) { d.behavior = b }
}

// WithFlow preloads the topology asset so Start skips the asset loader.
func WithFlow(f *data.Flow) Option {
	return func(d *Dungeon) { d.flow = f }
}

func New(cfg config.DungeonConfig, gen Generator, assets AssetLoader, bus *event.Bus, ents *ecs.World, log *zap.Logger, opts ...Option) *Dungeon {
	reg := world.NewRegistry()
	locator := world.NewLocator(reg)
	window := system.NewVisibilityWindow(reg, bus, cfg.CullingEnabled, log)
	agent := system.NewTrackedAgent()
	d := &Dungeon{
		cfg:     cfg,
		seed:    cfg.ResolvedSeed(),
		gen:     gen,
		assets:  assets,
		bus:     bus,
		ents:    ents,
		reg:     reg,
		locator: locator,
		window:  window,
		agent:   agent,
		tracker: system.NewRoomTransitionSystem(agent, locator, window, bus, log),
		log:     log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dungeon) Phase() coresys.Phase { return coresys.PhasePreUpdate }

// Update resolves a pending flow load without blocking the frame.
func (d *Dungeon) Update(_ time.Duration) {
	if d.pending == nil {
		return
	}
	select {
	case res := <-d.pending:
		d.pending = nil
		d.onFlowLoaded(res)
	default:
	}
}

// Start requests the configured flow and generates once it resolves. With
// a preloaded flow it generates immediately.
func (d *Dungeon) Start(ctx context.Context) {
	if d.flow != nil {
		d.Generate(ctx)
		return
	}
	if d.pending != nil {
		d.log.Warn("flow load already in flight", zap.String("address", d.cfg.FlowAddress))
		return
	}
	d.loadCtx = ctx
	d.pending = d.assets.LoadAsync(ctx, d.cfg.FlowAddress)
	d.log.Debug("loading dungeon flow", zap.String("address", d.cfg.FlowAddress))
}

// Loading reports whether a flow load is still unresolved.
func (d *Dungeon) Loading() bool { return d.pending != nil }

func (d *Dungeon) onFlowLoaded(res data.LoadResult) {
	if res.Err != nil || res.Flow == nil {
		d.log.Error("could not find dungeon flow asset",
			zap.String("address", d.cfg.FlowAddress),
			zap.Error(res.Err),
		)
		return
	}
	d.flow = res.Flow
	d.Generate(d.loadCtx)
}

// Generate replaces the current dungeon with a freshly generated one.
func (d *Dungeon) Generate(ctx context.Context) {
	if d.generating {
		d.log.Warn("generation already running, request ignored")
		return
	}
	if d.flow == nil {
		d.log.Error("cannot generate without a dungeon flow", zap.String("address", d.cfg.FlowAddress))
		return
	}
	d.generating = true
	defer func() { d.generating = false }()

	d.teardown()
	res, err := d.gen.Generate(ctx, Request{
		Seed:        d.seed,
		Flow:        d.flow,
		StaticBatch: d.cfg.StaticBatchRooms,
	})
	if err != nil {
		d.log.Error("dungeon generation failed",
			zap.String("flow", d.flow.Address),
			zap.Int64("seed", d.seed),
			zap.Error(err),
		)
		return
	}
	d.onGenerationComplete(res)
}

// teardown drops the current dungeon. Room IDs are released at frame end.
func (d *Dungeon) teardown() {
	d.reg.Each(func(_ int, r *world.Room) {
		d.ents.MarkForDestruction(r.ID)
	})
	d.reg.Clear()
	d.tracker.Reset()
	d.initialized = false
}

func (d *Dungeon) onGenerationComplete(res *Result) {
	d.seed = res.Seed
	d.stats = res.Stats
	d.log.Info("dungeon generated",
		zap.String("flow", d.flow.Address),
		zap.Int64("seed", res.Seed),
		zap.Duration("generation_time", res.Stats.TotalTime),
		zap.Int("main_rooms", res.Stats.MainPathRooms),
		zap.Int("branch_rooms", res.Stats.BranchRooms),
		zap.Int("total_rooms", res.Stats.TotalRooms),
		zap.Int("retries", res.Stats.Retries),
	)

	rooms := make([]*world.Room, 0, len(res.Tiles))
	for i, tile := range res.Tiles {
		r := tile.Room()
		if r == nil {
			d.log.Warn("tile has no room attached", zap.Int("tile", i))
			continue
		}
		r.Bounds = tile.Bounds()
		if r.Behavior == nil && d.behavior != nil {
			r.Behavior = d.behavior
		}
		rooms = append(rooms, r)
	}
	if len(rooms) == 0 {
		d.log.Error("no rooms generated", zap.Int("tiles", len(res.Tiles)))
		return
	}
	if err := d.reg.Populate(rooms); err != nil {
		d.log.Error("generated rooms rejected", zap.Error(err))
		return
	}
	d.reg.Each(func(_ int, r *world.Room) {
		r.ID = d.ents.CreateEntity()
	})

	d.BakeNavMesh()

	entry, _ := d.reg.Get(0)
	spawn, ok := entry.PlayerSpawn()
	if !ok {
		d.log.Error("starting room has no player spawn", zap.String("room", entry.Name))
		return
	}

	d.agent.SetPosition(spawn)
	d.tracker.Place(d.locator.Locate(spawn, world.NoRoom))
	d.initialized = true
	d.tracker.Activate()
	d.window.Recompute(d.agent.Current())

	event.Emit(d.bus, event.DungeonGenerated{})
}

// BakeNavMesh bakes navigation for the current rooms.
func (d *Dungeon) BakeNavMesh() {
	if d.nav == nil {
		return
	}
	if d.reg.Len() == 0 {
		d.log.Warn("nav mesh bake skipped, no dungeon")
		return
	}
	if err := d.nav.Bake(d.reg.Rooms()); err != nil {
		d.log.Error("nav mesh bake failed", zap.Error(err))
	}
}

// BakeGlobalNavMesh bakes one surface over the whole dungeon instead of
// per-room links.
func (d *Dungeon) BakeGlobalNavMesh() {
	if d.nav == nil {
		return
	}
	if err := d.nav.BakeGlobal(d.reg.Rooms()); err != nil {
		d.log.Error("global nav mesh bake failed", zap.Error(err))
	}
}

// SetCulling enables or disables culling and reapplies the window.
func (d *Dungeon) SetCulling(enabled bool) {
	d.window.SetEnabled(enabled)
	d.window.Recompute(d.agent.Current())
	d.log.Info("room culling", zap.Bool("enabled", enabled))
}

func (d *Dungeon) ToggleCulling() {
	d.SetCulling(!d.window.Enabled())
}

func (d *Dungeon) CullingEnabled() bool { return d.window.Enabled() }

// RoomPrevious returns the room before r on the path.
func (d *Dungeon) RoomPrevious(r *world.Room) world.RoomRef { return d.reg.Previous(r) }

// RoomNext returns the room after r on the path.
func (d *Dungeon) RoomNext(r *world.Room) world.RoomRef { return d.reg.Next(r) }

// RoomIndex returns r's position on the path.
func (d *Dungeon) RoomIndex(r *world.Room) (int, bool) { return d.reg.IndexOf(r) }

// Current is the room the player is in.
func (d *Dungeon) Current() world.RoomRef { return d.agent.Current() }

// SetSeed sets the seed for the next generation; 0 randomises.
func (d *Dungeon) SetSeed(seed int64) { d.seed = seed }

// Seed is the seed of the last generation, or the requested one before.
func (d *Dungeon) Seed() int64 { return d.seed }

func (d *Dungeon) Stats() Stats {
	return d.stats
}

func (d *Dungeon) Flow() *data.Flow {
	return d.flow
}

func (d *Dungeon) Initialized() bool {
	return d.initialized
}

func (d *Dungeon) Registry() *world.Registry {
	return d.reg
}

func (d *Dungeon) Agent() *system.TrackedAgent {
	return d.agent
}

func (d *Dungeon) Tracker() *system.RoomTransitionSystem {
	return d.tracker
}

func (d *Dungeon) Window() *system.VisibilityWindow {
	return d.window
}

func (d *Dungeon) Bus() *event.Bus {
	return d.bus
}
