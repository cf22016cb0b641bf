package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

const branchContextPrefix = "branch-context"

// BranchChangeListener is invoked after a session switches branches.
type BranchChangeListener func(sessionID, branchID string)

// BranchContext tracks which branch each session is working in. The
// selection is persisted in redis so it survives the session's page loads;
// listeners are in-process only.
type BranchContext struct {
	rdb *redis.Client
	log *zap.Logger

	mu        sync.Mutex
	listeners []BranchChangeListener
}

func NewBranchContext(rdb *redis.Client, log *zap.Logger) *BranchContext {
	return &BranchContext{rdb: rdb, log: log}
}

// CurrentBranch returns the session's selected branch id, or "" when no
// selection has been made yet.
func (b *BranchContext) CurrentBranch(ctx context.Context, sessionID string) (string, error) {
	branchID, err := b.rdb.Get(ctx, branchContextKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransient, err)
	}

	return branchID, nil
}

// SetCurrentBranch persists the selection and notifies listeners.
func (b *BranchContext) SetCurrentBranch(ctx context.Context, sessionID, branchID string) error {
	if sessionID == "" || branchID == "" {
		return fmt.Errorf("%w: session and branch are required", models.ErrValidation)
	}

	if err := b.rdb.Set(ctx, branchContextKey(sessionID), branchID, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrTransient, err)
	}

	b.mu.Lock()
	listeners := make([]BranchChangeListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, listener := range listeners {
		listener(sessionID, branchID)
	}

	return nil
}

// OnBranchChange registers an in-process listener.
func (b *BranchContext) OnBranchChange(listener BranchChangeListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func branchContextKey(sessionID string) string {
	return branchContextPrefix + ":" + sessionID
}
