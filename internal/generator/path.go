// Package generator is the built-in dungeon generator. It lays a flow's
// rooms out as a straight main path along +X with branches hanging off it
// along Z. Rooms on a path share a face, so neighbours touch and nothing
// overlaps.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/dungeon"
	"github.com/l1jgo/dungeon/internal/world"
	"go.uber.org/zap"
)

var ErrGenerationFailed = errors.New("dungeon generation failed")

// overlap tolerance; faces that merely touch do not count
const overlapEps = 1e-6

type tile struct {
	bounds world.Bounds
	room   *world.Room
}

func (t *tile) Bounds() world.Bounds { return t.bounds }
func (t *tile) Room() *world.Room    { return t.room }

// PathGenerator implements dungeon.Generator.
type PathGenerator struct {
	log *zap.Logger
	now func() time.Time
}

func NewPathGenerator(log *zap.Logger) *PathGenerator {
	return &PathGenerator{log: log, now: time.Now}
}

// Generate builds one dungeon. A zero seed picks a fresh one; the seed
// used is reported in the result so the layout can be replayed.
func (g *PathGenerator) Generate(ctx context.Context, req dungeon.Request) (*dungeon.Result, error) {
	if req.Flow == nil {
		return nil, fmt.Errorf("%w: no flow", ErrGenerationFailed)
	}
	start := g.now()
	seed := req.Seed
	if seed == 0 {
		seed = rand.New(rand.NewSource(start.UnixNano())).Int63n(1<<62) + 1
	}
	rng := rand.New(rand.NewSource(seed))

	attempts := req.Flow.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l := &layout{flow: req.Flow, rng: rng}
		if err := l.build(); err != nil {
			lastErr = err
			g.log.Debug("generation attempt rejected",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}
		if req.StaticBatch {
			g.log.Debug("static batching requested", zap.Int("rooms", len(l.tiles)))
		}
		return &dungeon.Result{
			Seed: seed,
			Stats: dungeon.Stats{
				TotalTime:     g.now().Sub(start),
				MainPathRooms: l.main,
				BranchRooms:   len(l.tiles) - l.main,
				TotalRooms:    len(l.tiles),
				Retries:       attempt,
			},
			Tiles: l.tiles,
		}, nil
	}
	return nil, fmt.Errorf("%w: flow %s after %d attempts: %v", ErrGenerationFailed, req.Flow.Address, attempts, lastErr)
}

type layout struct {
	flow  *data.Flow
	rng   *rand.Rand
	tiles []dungeon.Tile
	main  int
}

func (l *layout) build() error {
	n := l.between(l.flow.MainPath)
	fillers := l.flow.Fillers()

	cursor := 0.0
	for i := 0; i < n; i++ {
		var arch *data.Archetype
		switch {
		case i == 0 && l.flow.Start != "":
			arch, _ = l.flow.Archetype(l.flow.Start)
		case i == n-1 && n > 1 && l.flow.Goal != "":
			arch, _ = l.flow.Archetype(l.flow.Goal)
		default:
			arch = l.pick(fillers)
		}
		if arch == nil {
			return fmt.Errorf("no archetype for main path room %d", i)
		}
		size := mgl64.Vec3{arch.Size[0], arch.Size[1], arch.Size[2]}
		b := world.Bounds{
			Min: mgl64.Vec3{cursor, 0, -size[2] / 2},
			Max: mgl64.Vec3{cursor + size[0], size[1], size[2] / 2},
		}
		cursor += size[0]
		r := l.place(fmt.Sprintf("%s_%02d", arch.Name, i), arch, b, false)
		if i == 0 && arch.PlayerSpawn {
			c := b.Center()
			r.SetPlayerSpawn(mgl64.Vec3{c[0], b.Min[1] + math.Min(1, size[1]/2), c[2]})
		}
	}
	l.main = n

	if n < 3 || len(fillers) == 0 {
		return nil
	}
	branches := l.between(l.flow.Branches)
	for bi := 0; bi < branches; bi++ {
		// branches never leave the start or goal room
		parent := l.tiles[1+l.rng.Intn(n-2)].Bounds()
		side := 1.0
		if l.rng.Intn(2) == 0 {
			side = -1
		}
		depth := l.between(l.flow.BranchDepth)
		edge := parent.Max[2]
		if side < 0 {
			edge = parent.Min[2]
		}
		cx := parent.Center()[0]
		for d := 0; d < depth; d++ {
			arch := l.pick(fillers)
			size := mgl64.Vec3{arch.Size[0], arch.Size[1], arch.Size[2]}
			near, far := edge, edge+side*size[2]
			b := world.BoundsFromCorners(
				mgl64.Vec3{cx - size[0]/2, 0, near},
				mgl64.Vec3{cx + size[0]/2, size[1], far},
			)
			if l.overlaps(b) {
				return fmt.Errorf("branch %d room %d overlaps", bi, d)
			}
			l.place(fmt.Sprintf("branch%d_%s_%d", bi, arch.Name, d), arch, b, true)
			edge = far
		}
	}
	return nil
}

func (l *layout) place(name string, arch *data.Archetype, b world.Bounds, branch bool) *world.Room {
	r := world.NewRoom(name, b)
	r.Archetype = arch.Name
	r.Branch = branch
	l.tiles = append(l.tiles, &tile{bounds: b, room: r})
	return r
}

func (l *layout) overlaps(b world.Bounds) bool {
	for _, t := range l.tiles {
		if t.Bounds().Touches(b, -overlapEps) {
			return true
		}
	}
	return false
}

func (l *layout) between(r data.Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + l.rng.Intn(r.Max-r.Min+1)
}

// pick chooses a filler by weight.
func (l *layout) pick(fillers []data.Archetype) *data.Archetype {
	total := 0
	for _, a := range fillers {
		total += a.Weight
	}
	if total == 0 {
		return nil
	}
	n := l.rng.Intn(total)
	for i := range fillers {
		if n < fillers[i].Weight {
			return &fillers[i]
		}
		n -= fillers[i].Weight
	}
	return nil
}
