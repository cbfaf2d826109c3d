package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const rewardPotStoreDir = "reward-pots"

type rewardPotRepository struct {
	store *badgerhold.Store
}

func NewRewardPotRepository(config ...interface{}) (domain.RewardPotRepository, error) {
	store, err := openStore(rewardPotStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open reward pot store: %s", err)
	}
	return &rewardPotRepository{store}, nil
}

func (r *rewardPotRepository) Add(_ context.Context, pot domain.RewardPot) error {
	if err := r.store.Insert(pot.RoundId, &pot); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("reward pot of round %d already exists", pot.RoundId)
		}
		return err
	}
	return nil
}

func (r *rewardPotRepository) Update(_ context.Context, pot domain.RewardPot) error {
	if err := r.store.Update(pot.RoundId, &pot); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrRewardPotNotFound.Withf("round %d", pot.RoundId)
		}
		return err
	}
	return nil
}

func (r *rewardPotRepository) Get(_ context.Context, roundId uint64) (*domain.RewardPot, error) {
	var pot domain.RewardPot
	err := r.store.Get(roundId, &pot)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, domain.ErrRewardPotNotFound.Withf("round %d", roundId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward pot of round %d: %w", roundId, err)
	}
	return &pot, nil
}

func (r *rewardPotRepository) Close() {
	r.store.Close()
}
