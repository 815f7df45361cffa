package repository

import (
	"context"
	"time"

	"github.com/relkit/relkit/internal/domain"
)

// HistoryEntry is one row of the local release ledger.
type HistoryEntry struct {
	ID              int64
	RunID           string
	PreviousVersion string
	Version         string
	Level           string
	TagName         string
	TotalCommits    int
	PatchMarked     int
	MinorMarked     int
	MajorMarked     int
	Status          string
	CreatedAt       time.Time
}

// HistoryRepository persists the outcome of release runs.
type HistoryRepository interface {
	Record(ctx context.Context, release *domain.Release) error
	List(ctx context.Context, limit int) ([]HistoryEntry, error)
	Close() error
}
