package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/supplematch/internal/model"
)

// Recommender produces a recommendation result for one user
type Recommender interface {
	Recommend(ctx context.Context, userID string) (*model.RecommendationResult, error)
}

// UserResult is the outcome of one user in a batch
type UserResult struct {
	UserID string
	Result *model.RecommendationResult
	Error  error
}

// BatchProcessor runs recommendations for many users concurrently
type BatchProcessor struct {
	recommender Recommender
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(recommender Recommender, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		recommender: recommender,
		concurrency: concurrency,
	}
}

// ProcessUsers recommends for every user; results keep the input order
func (b *BatchProcessor) ProcessUsers(ctx context.Context, userIDs []string) []*UserResult {
	if len(userIDs) == 0 {
		return []*UserResult{}
	}

	pool := NewPool[*UserResult](ctx, b.concurrency)
	pool.Start()

	var submitted []int
	for i, id := range userIDs {
		userID := id
		ok := pool.Submit(func(ctx context.Context) *UserResult {
			result, err := b.recommender.Recommend(ctx, userID)
			return &UserResult{UserID: userID, Result: result, Error: err}
		})
		if ok {
			submitted = append(submitted, i)
		}
	}

	out := make([]*UserResult, len(userIDs))
	for j, r := range pool.Wait() {
		out[submitted[j]] = r
	}

	// users skipped or dropped by cancellation
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("not processed")
			}
			out[i] = &UserResult{UserID: userIDs[i], Error: err}
		}
	}
	return out
}

// ProcessFile reads user ids from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*UserResult, error) {
	ids, err := ReadUsersFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}

	return b.ProcessUsers(ctx, ids), nil
}

// ReadUsersFromFile reads user ids from a file (one per line)
func ReadUsersFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
