package persist

import (
	"context"
	"fmt"
	"time"
)

// RunRow is one successful dungeon generation.
type RunRow struct {
	ID            int64
	FlowAddress   string
	Seed          int64
	MainPathRooms int
	BranchRooms   int
	TotalRooms    int
	Retries       int
	GenerationMS  int64
	CreatedAt     time.Time
}

// TransitionRow is one player room change inside a run. FromIndex is -1
// for the first placement.
type TransitionRow struct {
	RunID     int64
	FromIndex int
	ToIndex   int
	At        time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// InsertRun stores a generation record and returns its ID.
func (r *RunRepo) InsertRun(ctx context.Context, run RunRow) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO dungeon_runs (flow_address, seed, main_path_rooms, branch_rooms, total_rooms, retries, generation_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		run.FlowAddress, run.Seed, run.MainPathRooms, run.BranchRooms, run.TotalRooms, run.Retries, run.GenerationMS,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// InsertTransitions writes a batch of room changes in one transaction.
func (r *RunRepo) InsertTransitions(ctx context.Context, rows []TransitionRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("transitions begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range rows {
		var from any
		if t.FromIndex >= 0 {
			from = t.FromIndex
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO room_transitions (run_id, from_index, to_index, at) VALUES ($1, $2, $3, $4)`,
			t.RunID, from, t.ToIndex, t.At,
		); err != nil {
			return fmt.Errorf("transitions insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// RecentRuns returns the newest runs first.
func (r *RunRepo) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, flow_address, seed, main_path_rooms, branch_rooms, total_rooms, retries, generation_ms, created_at
		 FROM dungeon_runs ORDER BY id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		var run RunRow
		if err := rows.Scan(
			&run.ID, &run.FlowAddress, &run.Seed, &run.MainPathRooms, &run.BranchRooms,
			&run.TotalRooms, &run.Retries, &run.GenerationMS, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}
