package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// ApprovalGuard provides a once-only marker backed by Redis, taken before a
// loan approval generates its payment schedule.
// Key format: approval:<loan_id>
type ApprovalGuard struct {
	client *redis.Client
}

// NewApprovalGuard creates an ApprovalGuard wrapping the given Redis client.
func NewApprovalGuard(client *redis.Client) *ApprovalGuard {
	return &ApprovalGuard{client: client}
}

// Acquire atomically claims the marker for a loan. It returns true for the
// first caller and false for everyone after, so two concurrent approvals
// cannot both generate a schedule.
func (g *ApprovalGuard) Acquire(ctx context.Context, loanID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(loanID), "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("approval guard: %w", err)
	}
	return ok, nil
}

// Release drops the marker so a failed approval can be retried before the
// TTL expires.
func (g *ApprovalGuard) Release(ctx context.Context, loanID string) error {
	if err := g.client.Del(ctx, g.key(loanID)).Err(); err != nil {
		return fmt.Errorf("approval guard: %w", err)
	}
	return nil
}

func (g *ApprovalGuard) key(loanID string) string {
	return "approval:" + loanID
}
