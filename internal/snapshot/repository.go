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
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored ingestion outcome. Only the last refresh of a day is kept.
type Snapshot struct {
	ID            int64           `json:"id"`
	RunID         uuid.UUID       `json:"runId"`
	SnapshotDate  time.Time       `json:"snapshotDate"`
	Source        string          `json:"source"`
	HoldingsCount int             `json:"holdingsCount"`
	TotalValue    float64         `json:"totalValue"`
	Data          json.RawMessage `json:"data"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Repository defines persistent storage for snapshots.
type Repository interface {
	Save(ctx context.Context, s Snapshot) error
	GetLatest(ctx context.Context) (*Snapshot, error)
	GetByDate(ctx context.Context, date time.Time) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

const pgColumns = `id, run_id, snapshot_date, source, holdings_count, total_value, data, created_at`

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, s Snapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_snapshots (run_id, snapshot_date, source, holdings_count, total_value, data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 ON CONFLICT (snapshot_date)
		 DO UPDATE SET run_id = $1, source = $3, holdings_count = $4, total_value = $5, data = $6::jsonb, created_at = NOW()`,
		s.RunID, s.SnapshotDate, s.Source, s.HoldingsCount, s.TotalValue, s.Data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pgColumns+`
		 FROM portfolio_snapshots
		 ORDER BY snapshot_date DESC
		 LIMIT 1`)
	s, err := scanPg(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pgColumns+`
		 FROM portfolio_snapshots
		 WHERE snapshot_date = $1`, date)
	s, err := scanPg(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return s, nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+pgColumns+`
		 FROM portfolio_snapshots
		 ORDER BY snapshot_date DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanPg(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

func scanPg(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	if err := row.Scan(&s.ID, &s.RunID, &s.SnapshotDate, &s.Source, &s.HoldingsCount, &s.TotalValue, &s.Data, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
