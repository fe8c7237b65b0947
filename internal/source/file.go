package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ppiankov/supplematch/internal/model"
)

// Fixture is the on-disk layout of <dir>/<user>.json
type Fixture struct {
	Profile       *model.ProfileRecord `json:"profile,omitempty"`
	Checkins      []model.Checkin      `json:"checkins,omitempty"`
	NutritionLogs []model.NutritionLog `json:"nutrition_logs,omitempty"`
}

// FileSource reads per-user JSON fixtures from a directory
type FileSource struct {
	dir string
}

// NewFileSource creates a file source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Profile returns the fixture's profile
func (s *FileSource) Profile(ctx context.Context, userID string) (*model.ProfileRecord, error) {
	fx, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fx.Profile == nil {
		return nil, fmt.Errorf("profile for %s: %w", userID, ErrNotFound)
	}
	p := *fx.Profile
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}

// Checkins returns check-ins dated at or after since
func (s *FileSource) Checkins(ctx context.Context, userID string, since time.Time) ([]model.Checkin, error) {
	fx, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Checkin, 0, len(fx.Checkins))
	for _, c := range fx.Checkins {
		if !c.Date.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

// NutritionLogs returns nutrition logs dated at or after since
func (s *FileSource) NutritionLogs(ctx context.Context, userID string, since time.Time) ([]model.NutritionLog, error) {
	fx, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.NutritionLog, 0, len(fx.NutritionLogs))
	for _, n := range fx.NutritionLogs {
		if !n.Date.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *FileSource) load(ctx context.Context, userID string) (*Fixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" || strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, userID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("fixture for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", userID, err)
	}
	return &fx, nil
}
