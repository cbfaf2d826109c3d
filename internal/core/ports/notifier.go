package ports

import (
	"context"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

// Notifier fans round events out to live subscribers. It is not a source of
// truth, events are persisted by the event repository.
type Notifier interface {
	Notify(ctx context.Context, events ...domain.RoundEvent) error
	Subscribe(ctx context.Context) (<-chan domain.RoundEvent, error)
	Close()
}
