package dungeon

import (
	"context"
	"time"

	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/world"
)

// Request parameterises one generation.
type Request struct {
	Seed        int64 // 0 = randomise
	Flow        *data.Flow
	StaticBatch bool
}

// Stats describes a finished generation.
type Stats struct {
	TotalTime     time.Duration
	MainPathRooms int
	BranchRooms   int
	TotalRooms    int
	Retries       int
}

// Tile is the generator's structural unit. Its bounds are authoritative
// for containment; Room returns the attached room object, or nil when the
// tile carries none.
type Tile interface {
	Bounds() world.Bounds
	Room() *world.Room
}

// Result is the generation-complete signal.
type Result struct {
	Seed  int64 // the seed actually used
	Stats Stats
	Tiles []Tile // path order: main path first, then branches
}

// Generator builds a dungeon graph.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// AssetLoader resolves topology assets by address. The channel yields
// exactly one result.
type AssetLoader interface {
	LoadAsync(ctx context.Context, address string) <-chan data.LoadResult
}

// NavMeshBaker builds navigation data for a generated dungeon.
type NavMeshBaker interface {
	Bake(rooms []*world.Room) error
	BakeGlobal(rooms []*world.Room) error
}
