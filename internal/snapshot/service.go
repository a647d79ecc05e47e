package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// Data is the JSON document stored with each snapshot.
type Data struct {
	Result domain.Result `json:"result"`
	Status domain.Status `json:"status"`
}

// Service records refresh outcomes and serves them back.
type Service struct {
	repo Repository
}

// NewService creates a new snapshot Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Name identifies the service in refresh hook logs.
func (s *Service) Name() string { return "snapshot" }

// AfterRefresh stores the refresh outcome as the snapshot of its day.
// Not-ok outcomes are not stored so a broken file cannot overwrite a good day.
func (s *Service) AfterRefresh(ctx context.Context, result domain.Result, status domain.Status) error {
	if !status.OK {
		slog.Info("snapshot: skipping not-ok refresh", "runId", status.RunID, "message", status.Message)
		return nil
	}
	return s.Record(ctx, result, status)
}

// Record stores result and status as the snapshot for the status's check date.
func (s *Service) Record(ctx context.Context, result domain.Result, status domain.Status) error {
	data, err := json.Marshal(Data{Result: result, Status: status})
	if err != nil {
		return fmt.Errorf("marshaling snapshot data: %w", err)
	}

	snap := Snapshot{
		RunID:         status.RunID,
		SnapshotDate:  utcDate(status.CheckedAt),
		Source:        string(status.Source),
		HoldingsCount: len(result.Holdings),
		TotalValue:    domain.Round2(result.Totals.Value),
		Data:          data,
	}
	if err := s.repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot.
func (s *Service) GetLatest(ctx context.Context) (*Snapshot, error) {
	return s.repo.GetLatest(ctx)
}

// GetByDate retrieves the snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, date)
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, limit)
}

// utcDate normalizes t to midnight UTC.
func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
