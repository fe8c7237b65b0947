package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/worker"
)

// ErrNotFound is returned when a source has no record for the user
var ErrNotFound = errors.New("not found")

// Source provides the raw per-user records the aggregator builds snapshots from
type Source interface {
	Profile(ctx context.Context, userID string) (*model.ProfileRecord, error)
	Checkins(ctx context.Context, userID string, since time.Time) ([]model.Checkin, error)
	NutritionLogs(ctx context.Context, userID string, since time.Time) ([]model.NutritionLog, error)
}

// New builds the source selected by cfg.Kind
func New(cfg model.SourceConfig, limiter *worker.Limiter) (Source, error) {
	switch cfg.Kind {
	case "", "file":
		return NewFileSource(cfg.DataDir), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("http source requires base_url")
		}
		return NewHTTPSource(cfg, limiter), nil
	}
	return nil, fmt.Errorf("unknown source kind %q (expected file or http)", cfg.Kind)
}
