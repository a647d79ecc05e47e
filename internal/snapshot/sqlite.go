package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout    = "2006-01-02"
	sqliteColumns = `id, run_id, snapshot_date, source, holdings_count, total_value, data, created_at`
)

// SQLiteRepository implements Repository on a local SQLite file, for single-host
// setups without PostgreSQL. Dates are stored as YYYY-MM-DD text.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite snapshot repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, s Snapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO portfolio_snapshots (run_id, snapshot_date, source, holdings_count, total_value, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (snapshot_date)
		 DO UPDATE SET run_id = excluded.run_id, source = excluded.source, holdings_count = excluded.holdings_count,
		               total_value = excluded.total_value, data = excluded.data, created_at = excluded.created_at`,
		s.RunID.String(), s.SnapshotDate.Format(dateLayout), s.Source, s.HoldingsCount, s.TotalValue,
		string(s.Data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetLatest(ctx context.Context) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM portfolio_snapshots ORDER BY snapshot_date DESC LIMIT 1`)
	s, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM portfolio_snapshots WHERE snapshot_date = ?`, date.Format(dateLayout))
	s, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM portfolio_snapshots ORDER BY snapshot_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSQLite(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Snapshot, error) {
	var (
		s                        Snapshot
		runID, date, data, added string
	)
	if err := row.Scan(&s.ID, &runID, &date, &s.Source, &s.HoldingsCount, &s.TotalValue, &data, &added); err != nil {
		return nil, err
	}

	var err error
	if s.RunID, err = uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("parsing run id %q: %w", runID, err)
	}
	if s.SnapshotDate, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parsing snapshot date %q: %w", date, err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339, added); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", added, err)
	}
	s.Data = []byte(data)
	return &s, nil
}
