package ports

import (
	"context"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

// SeedStore keeps the secret seeds of rounds started by the daemon until
// they are revealed.
type SeedStore interface {
	Put(ctx context.Context, roundId uint64, seed domain.Seed) error
	Get(ctx context.Context, roundId uint64) (*domain.Seed, error)
	Delete(ctx context.Context, roundId uint64) error
	Close()
}
