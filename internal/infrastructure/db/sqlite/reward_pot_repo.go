package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

type rewardPotRepository struct {
	db *sql.DB
}

func NewRewardPotRepository(config ...interface{}) (domain.RewardPotRepository, error) {
	db, err := dbFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open reward pot repository: %s", err)
	}
	return &rewardPotRepository{db}, nil
}

func (r *rewardPotRepository) Add(ctx context.Context, pot domain.RewardPot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reward_pot (round_id, token_account, authority, total_minted, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		pot.RoundId, pot.TokenAccount, pot.Authority, pot.TotalMinted, pot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add reward pot of round %d: %w", pot.RoundId, err)
	}
	return nil
}

func (r *rewardPotRepository) Update(ctx context.Context, pot domain.RewardPot) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reward_pot SET token_account = ?, authority = ?, total_minted = ?
		WHERE round_id = ?`,
		pot.TokenAccount, pot.Authority, pot.TotalMinted, pot.RoundId,
	)
	if err != nil {
		return fmt.Errorf("failed to update reward pot of round %d: %w", pot.RoundId, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRewardPotNotFound.Withf("round %d", pot.RoundId)
	}
	return nil
}

func (r *rewardPotRepository) Get(ctx context.Context, roundId uint64) (*domain.RewardPot, error) {
	pot := domain.RewardPot{RoundId: roundId}
	err := r.db.QueryRowContext(ctx, `
		SELECT token_account, authority, total_minted, created_at
		FROM reward_pot WHERE round_id = ?`, roundId,
	).Scan(&pot.TokenAccount, &pot.Authority, &pot.TotalMinted, &pot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRewardPotNotFound.Withf("round %d", roundId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward pot of round %d: %w", roundId, err)
	}
	return &pot, nil
}

func (r *rewardPotRepository) Close() {}
