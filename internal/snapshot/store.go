// Package snapshot persists named model snapshots in Postgres.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/ccmcalc/internal/model"
)

// ErrNotFound is returned when no snapshot exists under the requested name.
var ErrNotFound = errors.New("snapshot not found")

// Store reads and writes snapshots in the ccm.snapshots table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Info is a snapshot listing row, without the record payload.
type Info struct {
	ID          uuid.UUID
	Name        string
	CreatedAt   time.Time
	ProfitMode  bool
	RecordCount int
}

// Save stores a snapshot. Saving under an existing name replaces the previous
// snapshot; there is no versioning.
func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	assumptions, err := json.Marshal(snap.Assumptions)
	if err != nil {
		return fmt.Errorf("marshal assumptions: %w", err)
	}
	records, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO ccm.snapshots (snapshot_id, snapshot_name, created_at, profit_mode, assumptions, records)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (snapshot_name) DO UPDATE SET
		     snapshot_id = EXCLUDED.snapshot_id,
		     created_at  = EXCLUDED.created_at,
		     profit_mode = EXCLUDED.profit_mode,
		     assumptions = EXCLUDED.assumptions,
		     records     = EXCLUDED.records`,
		snap.ID, snap.Name, snap.CreatedAt, snap.ProfitMode, assumptions, records,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", snap.Name, err)
	}
	return nil
}

// List returns all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT snapshot_id, snapshot_name, created_at, profit_mode,
		        jsonb_array_length(records)
		 FROM ccm.snapshots
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.ProfitMode, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Load fetches a snapshot by name.
func (s *Store) Load(ctx context.Context, name string) (*model.Snapshot, error) {
	var (
		snap        model.Snapshot
		assumptions []byte
		records     []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT snapshot_id, snapshot_name, created_at, profit_mode, assumptions, records
		 FROM ccm.snapshots WHERE snapshot_name = $1`, name).
		Scan(&snap.ID, &snap.Name, &snap.CreatedAt, &snap.ProfitMode, &assumptions, &records)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}

	if err := json.Unmarshal(assumptions, &snap.Assumptions); err != nil {
		return nil, fmt.Errorf("unmarshal assumptions: %w", err)
	}
	if err := json.Unmarshal(records, &snap.Records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return &snap, nil
}

// Delete removes a snapshot by name. Deleting an absent name returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ccm.snapshots WHERE snapshot_name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
