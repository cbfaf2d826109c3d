package application

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

func (s *service) CreateRewardPot(
	ctx context.Context, caller string, roundId uint64,
) (*domain.RewardPot, error) {
	game, err := s.authorityGame(ctx, caller)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(roundLockKey(roundId))
	defer release()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return nil, err
	}
	if err := round.ExpectStatus(domain.FeeSettledStatus); err != nil {
		return nil, err
	}

	// The pot token account is the associated account of the pot authority,
	// so retrying after a failed commit reuses it.
	tokenAccount, err := s.tokens.GetOrCreateAccount(
		ctx, game.RewardMint, domain.RewardPotAuthority(roundId),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward pot token account: %w", err)
	}

	now := s.now()
	events, err := round.CreateRewardPot(tokenAccount, now)
	if err != nil {
		return nil, err
	}

	pot := domain.NewRewardPot(roundId, tokenAccount, now)
	if err := s.storeRewardPot(ctx, *pot); err != nil {
		return nil, err
	}

	if _, err := s.saveRound(ctx, roundId, events); err != nil {
		return nil, err
	}

	log.WithField("round_id", roundId).Debug("reward pot created")
	return pot, nil
}

func (s *service) MintRewardPot(
	ctx context.Context, caller string, roundId uint64,
) (*domain.RewardPot, error) {
	game, err := s.authorityGame(ctx, caller)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(roundLockKey(roundId))
	defer release()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return nil, err
	}
	events, err := round.MintRewards(domain.RewardPerRound)
	if err != nil {
		return nil, err
	}

	pot, err := s.repoManager.RewardPots().Get(ctx, roundId)
	if err != nil {
		return nil, err
	}

	// Tokens minted by an attempt whose events were not stored are still in
	// the pot account and are not minted twice.
	balance, err := s.tokens.Balance(ctx, pot.TokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward pot balance: %w", err)
	}
	if balance < domain.RewardPerRound {
		if err := s.tokens.MintTo(
			ctx, game.RewardMint, pot.TokenAccount,
			domain.RewardPerRound-balance, s.mintAuthority,
		); err != nil {
			return nil, fmt.Errorf("failed to mint reward tokens: %w", err)
		}
	}

	pot.TotalMinted = domain.RewardPerRound
	if err := s.repoManager.RewardPots().Update(ctx, *pot); err != nil {
		return nil, fmt.Errorf("failed to store reward pot: %w", err)
	}

	if _, err := s.saveRound(ctx, roundId, events); err != nil {
		return nil, err
	}

	log.WithField("round_id", roundId).Debugf("minted %d reward tokens", domain.RewardPerRound)
	return pot, nil
}

func (s *service) CalculateEntitlements(
	ctx context.Context, caller string, roundId uint64,
) (*domain.Round, error) {
	if _, err := s.authorityGame(ctx, caller); err != nil {
		return nil, err
	}

	release := s.locks.acquire(roundLockKey(roundId))
	defer release()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return nil, err
	}
	events, err := round.CalculateEntitlements()
	if err != nil {
		return nil, err
	}

	round, err = s.saveRound(ctx, roundId, events)
	if err != nil {
		return nil, err
	}

	log.WithField("round_id", roundId).Debugf(
		"calculated entitlements for %d players", len(round.Entitlements),
	)
	return round, nil
}

// ClaimRewards transfers the caller's reward tokens out of the round pot and
// returns the amount the caller received.
func (s *service) ClaimRewards(
	ctx context.Context, caller string, roundId uint64,
) (uint64, error) {
	release := s.locks.acquire(roundLockKey(roundId))
	defer release()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return 0, err
	}
	events, err := round.ClaimReward(caller)
	if err != nil {
		return 0, err
	}
	reward := events[0].(domain.RewardClaimed).Amount

	if reward == 0 {
		if _, err := s.saveRound(ctx, roundId, events); err != nil {
			return 0, err
		}
		return 0, nil
	}

	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return 0, err
	}
	pot, err := s.repoManager.RewardPots().Get(ctx, roundId)
	if err != nil {
		return 0, err
	}
	playerAccount, err := s.tokens.GetOrCreateAccount(ctx, game.RewardMint, caller)
	if err != nil {
		return 0, fmt.Errorf("failed to get reward token account: %w", err)
	}

	received, err := s.tokens.Transfer(
		ctx, game.RewardMint, pot.TokenAccount, playerAccount, reward, pot.Authority,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to transfer reward tokens: %w", err)
	}

	if _, err := s.saveRound(ctx, roundId, events); err != nil {
		if _, rerr := s.tokens.Transfer(
			ctx, game.RewardMint, playerAccount, pot.TokenAccount, received, caller,
		); rerr != nil {
			log.WithError(rerr).Errorf("failed to return reward tokens of %s", caller)
		}
		return 0, err
	}

	log.WithField("round_id", roundId).Debugf("%s claimed %d reward tokens", caller, received)
	return received, nil
}

func (s *service) authorityGame(ctx context.Context, caller string) (*domain.GameConfig, error) {
	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return nil, err
	}
	if !game.IsAuthority(caller) {
		return nil, domain.ErrUnauthorizedAccess
	}
	return game, nil
}

func (s *service) storeRewardPot(ctx context.Context, pot domain.RewardPot) error {
	_, err := s.repoManager.RewardPots().Get(ctx, pot.RoundId)
	if err == nil {
		err = s.repoManager.RewardPots().Update(ctx, pot)
	} else if errors.Is(err, domain.ErrRewardPotNotFound) {
		err = s.repoManager.RewardPots().Add(ctx, pot)
	}
	if err != nil {
		return fmt.Errorf("failed to store reward pot: %w", err)
	}
	return nil
}
