package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/l1jgo/dungeon/internal/data"
	"github.com/l1jgo/dungeon/internal/dungeon"
	"go.uber.org/zap"
)

// uniform rooms, at most one branch: every layout succeeds first try
func testFlow() *data.Flow {
	return &data.Flow{
		Address:     "Test.Flow",
		MainPath:    data.Range{Min: 4, Max: 7},
		Branches:    data.Range{Min: 1, Max: 1},
		BranchDepth: data.Range{Min: 1, Max: 3},
		MaxRetries:  3,
		Start:       "gate",
		Goal:        "boss",
		Rooms: []data.Archetype{
			{Name: "gate", Size: [3]float64{10, 4, 10}, PlayerSpawn: true},
			{Name: "boss", Size: [3]float64{10, 4, 10}},
			{Name: "hall", Size: [3]float64{10, 4, 10}, Weight: 1},
		},
	}
}

func generate(t *testing.T, req dungeon.Request) *dungeon.Result {
	t.Helper()
	res, err := NewPathGenerator(zap.NewNop()).Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestGenerateLayout(t *testing.T) {
	res := generate(t, dungeon.Request{Seed: 42, Flow: testFlow()})

	st := res.Stats
	if st.MainPathRooms < 4 || st.MainPathRooms > 7 {
		t.Fatalf("main path = %d", st.MainPathRooms)
	}
	if st.BranchRooms < 1 || st.BranchRooms > 3 {
		t.Fatalf("branch rooms = %d", st.BranchRooms)
	}
	if st.TotalRooms != len(res.Tiles) || st.TotalRooms != st.MainPathRooms+st.BranchRooms {
		t.Fatalf("stats = %+v, tiles = %d", st, len(res.Tiles))
	}
	if res.Seed != 42 {
		t.Fatalf("seed = %d", res.Seed)
	}

	first := res.Tiles[0].Room()
	if first.Archetype != "gate" {
		t.Fatalf("first room = %s", first.Archetype)
	}
	spawn, ok := first.PlayerSpawn()
	if !ok || !res.Tiles[0].Bounds().Contains(spawn) {
		t.Fatalf("spawn = %v, %v", spawn, ok)
	}
	if last := res.Tiles[st.MainPathRooms-1].Room(); last.Archetype != "boss" {
		t.Fatalf("last main room = %s", last.Archetype)
	}

	for i := 0; i < st.MainPathRooms; i++ {
		if res.Tiles[i].Room().Branch {
			t.Fatalf("main room %d marked as branch", i)
		}
		if i > 0 && !res.Tiles[i-1].Bounds().Touches(res.Tiles[i].Bounds(), 1e-9) {
			t.Fatalf("main rooms %d and %d do not touch", i-1, i)
		}
	}
	for i := st.MainPathRooms; i < len(res.Tiles); i++ {
		if !res.Tiles[i].Room().Branch {
			t.Fatalf("branch room %d not marked", i)
		}
	}
	for i := range res.Tiles {
		for j := i + 1; j < len(res.Tiles); j++ {
			if res.Tiles[i].Bounds().Touches(res.Tiles[j].Bounds(), -overlapEps) {
				t.Fatalf("tiles %d and %d overlap", i, j)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(t, dungeon.Request{Seed: 7, Flow: testFlow()})
	b := generate(t, dungeon.Request{Seed: 7, Flow: testFlow()})
	if len(a.Tiles) != len(b.Tiles) {
		t.Fatalf("tile counts differ: %d vs %d", len(a.Tiles), len(b.Tiles))
	}
	for i := range a.Tiles {
		if a.Tiles[i].Bounds() != b.Tiles[i].Bounds() || a.Tiles[i].Room().Name != b.Tiles[i].Room().Name {
			t.Fatalf("tile %d differs", i)
		}
	}
}

func TestGenerateRandomSeed(t *testing.T) {
	res := generate(t, dungeon.Request{Flow: testFlow()})
	if res.Seed <= 0 {
		t.Fatalf("chosen seed = %d", res.Seed)
	}
}

func TestGenerateErrors(t *testing.T) {
	g := NewPathGenerator(zap.NewNop())

	if _, err := g.Generate(context.Background(), dungeon.Request{}); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("nil flow: %v", err)
	}

	noFill := testFlow()
	noFill.Rooms[2].Weight = 0
	if _, err := g.Generate(context.Background(), dungeon.Request{Seed: 1, Flow: noFill}); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("no fillers: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, dungeon.Request{Seed: 1, Flow: testFlow()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled: %v", err)
	}
}

func TestGenerateNoSpawnArchetype(t *testing.T) {
	f := testFlow()
	f.Rooms[0].PlayerSpawn = false
	res := generate(t, dungeon.Request{Seed: 3, Flow: f})
	if _, ok := res.Tiles[0].Room().PlayerSpawn(); ok {
		t.Fatal("spawn set without player_spawn archetype")
	}
}
