package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	gameStoreDir = "game"
	gameKey      = "game"
)

type gameRepository struct {
	store *badgerhold.Store
}

func NewGameRepository(config ...interface{}) (domain.GameRepository, error) {
	store, err := openStore(gameStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open game store: %s", err)
	}
	return &gameRepository{store}, nil
}

func (r *gameRepository) Get(_ context.Context) (*domain.GameConfig, error) {
	var game domain.GameConfig
	err := r.store.Get(gameKey, &game)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, domain.ErrGameNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game config: %w", err)
	}
	return &game, nil
}

func (r *gameRepository) Upsert(_ context.Context, game domain.GameConfig) error {
	return upsertWithRetry(r.store, gameKey, &game)
}

func (r *gameRepository) Close() {
	r.store.Close()
}
