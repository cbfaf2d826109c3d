package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

type gameRepository struct {
	db *sql.DB
}

func NewGameRepository(config ...interface{}) (domain.GameRepository, error) {
	db, err := dbFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open game repository: %s", err)
	}
	return &gameRepository{db}, nil
}

func (r *gameRepository) Get(ctx context.Context) (*domain.GameConfig, error) {
	var (
		game   domain.GameConfig
		feeBps int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT authority, house_wallet, fee_bps, round_counter, reward_mint,
			created_at, updated_at
		FROM game_config WHERE id = 1`,
	).Scan(
		&game.Authority, &game.HouseWallet, &feeBps, &game.RoundCounter,
		&game.RewardMint, &game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGameNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game config: %w", err)
	}
	game.FeeBps = uint16(feeBps)
	return &game, nil
}

func (r *gameRepository) Upsert(ctx context.Context, game domain.GameConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO game_config (
			id, authority, house_wallet, fee_bps, round_counter, reward_mint,
			created_at, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			authority = excluded.authority,
			house_wallet = excluded.house_wallet,
			fee_bps = excluded.fee_bps,
			round_counter = excluded.round_counter,
			reward_mint = excluded.reward_mint,
			updated_at = excluded.updated_at`,
		game.Authority, game.HouseWallet, int64(game.FeeBps), game.RoundCounter,
		game.RewardMint, game.CreatedAt, game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game config: %w", err)
	}
	return nil
}

func (r *gameRepository) Close() {}
