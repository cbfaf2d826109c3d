package application

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

func (s *service) StartRound(
	ctx context.Context, caller string,
	commitment domain.Seed, duration int64, expectedRoundId uint64,
) (*domain.Round, error) {
	release := s.locks.acquire(gameLockKey)
	defer release()

	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return nil, err
	}
	roundId, err := game.NextRoundId(caller, expectedRoundId)
	if err != nil {
		return nil, err
	}

	if _, err := s.repoManager.Events().Load(ctx, roundId); err == nil {
		return nil, domain.ErrRoundAlreadyActive.Withf("round %d", roundId)
	} else if !errors.Is(err, domain.ErrRoundNotFound) {
		return nil, err
	}

	now := s.now()
	round := domain.NewRound(roundId)
	events, err := round.Start(commitment, now, duration)
	if err != nil {
		return nil, err
	}

	opened, err := s.openPotAccount(ctx, roundId, caller)
	if err != nil {
		return nil, err
	}
	undoOpen := func() {
		if opened {
			s.closeAccount(ctx, potAccount(roundId), caller)
		}
	}

	prevGame := *game
	game.CommitRound(roundId, now)
	if err := s.repoManager.Game().Upsert(ctx, *game); err != nil {
		undoOpen()
		return nil, fmt.Errorf("failed to store game config: %w", err)
	}

	round, err = s.saveRound(ctx, roundId, events)
	if err != nil {
		if err := s.repoManager.Game().Upsert(ctx, prevGame); err != nil {
			log.WithError(err).Errorf("failed to restore round counter to %d", prevGame.RoundCounter)
		}
		undoOpen()
		return nil, err
	}

	log.WithField("round_id", roundId).Infof("round started, betting closes at %d", round.EndTime)
	return round, nil
}

func (s *service) PlaceBet(
	ctx context.Context, caller string, roundId, amount uint64,
) (*domain.Round, error) {
	if len(caller) <= 0 {
		return nil, domain.ErrUnauthorizedEscrowAccess
	}

	releaseRound := s.locks.acquire(roundLockKey(roundId))
	defer releaseRound()
	releaseEscrow := s.locks.acquire(escrowLockKey(caller))
	defer releaseEscrow()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	events, err := round.PlaceBet(caller, amount, now)
	if err != nil {
		return nil, err
	}

	escrow, err := s.repoManager.Escrows().Get(ctx, caller)
	if err != nil {
		if errors.Is(err, domain.ErrEscrowNotFound) {
			return nil, domain.ErrInsufficientPlatformBalance.Withf("%s has no escrow", caller)
		}
		return nil, err
	}
	prevEscrow := *escrow
	if err := escrow.DebitForBet(caller, amount, now); err != nil {
		return nil, err
	}

	transfers := []ports.Transfer{
		{From: escrowAccount(caller), To: potAccount(roundId), Amount: amount},
	}
	if err := s.values.Transfer(ctx, transfers...); err != nil {
		return nil, ledgerError(err, domain.ErrInsufficientPlatformBalance)
	}

	if err := s.repoManager.Escrows().Upsert(ctx, *escrow); err != nil {
		s.revert(ctx, transfers)
		return nil, fmt.Errorf("failed to store escrow: %w", err)
	}

	round, err = s.saveRound(ctx, roundId, events)
	if err != nil {
		s.revert(ctx, transfers)
		s.restoreEscrow(ctx, prevEscrow)
		return nil, err
	}

	log.WithField("round_id", roundId).Debugf("%s bet %d", caller, amount)
	return round, nil
}

func (s *service) FinalizeRound(
	ctx context.Context, caller string, roundId uint64, reveal domain.Seed,
) (*domain.Round, error) {
	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return nil, err
	}
	if !game.IsAuthority(caller) {
		return nil, domain.ErrUnauthorizedAccess
	}

	release := s.locks.acquire(roundLockKey(roundId))
	defer release()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return nil, err
	}

	events, err := round.Finalize(reveal, s.now(), game.FeeBps, game.HouseWallet)
	if err != nil {
		return nil, err
	}

	transfers := []ports.Transfer{
		{From: potAccount(roundId), To: walletAccount(game.HouseWallet), Amount: round.HouseFee},
	}
	if err := s.values.Transfer(ctx, transfers...); err != nil {
		return nil, ledgerError(err, domain.ErrInsufficientFunds)
	}

	round, err = s.saveRound(ctx, roundId, events)
	if err != nil {
		s.revert(ctx, transfers)
		return nil, err
	}

	log.WithField("round_id", roundId).Infof(
		"round finalized, winner %s gets %d, house fee %d",
		round.Winner, round.WinnerAmount, round.HouseFee,
	)
	return round, nil
}

// ClaimWinnings credits the winner's escrow with the pot balance exceeding
// the pot reserve, capped to the winner amount, and returns the amount paid.
func (s *service) ClaimWinnings(
	ctx context.Context, caller string, roundId uint64,
) (uint64, error) {
	releaseRound := s.locks.acquire(roundLockKey(roundId))
	defer releaseRound()

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return 0, err
	}

	available, err := s.values.Available(ctx, potAccount(roundId))
	if err != nil {
		return 0, fmt.Errorf("failed to get pot balance: %w", err)
	}

	events, err := round.ClaimWinnings(caller, available)
	if err != nil {
		return 0, err
	}
	amount := round.WinningsPaid

	releaseEscrow := s.locks.acquire(escrowLockKey(caller))
	defer releaseEscrow()

	now := s.now()
	escrow, err := s.getOrCreateEscrow(ctx, caller, now)
	if err != nil {
		return 0, err
	}
	prevEscrow := *escrow
	if err := escrow.CreditWinnings(amount, now); err != nil {
		return 0, err
	}

	opened, err := s.ensureEscrowAccount(ctx, caller)
	if err != nil {
		return 0, err
	}
	undoOpen := func() {
		if opened {
			s.closeAccount(ctx, escrowAccount(caller), caller)
		}
	}
	transfers := []ports.Transfer{
		{From: potAccount(roundId), To: escrowAccount(caller), Amount: amount},
	}
	if err := s.values.Transfer(ctx, transfers...); err != nil {
		undoOpen()
		return 0, ledgerError(err, domain.ErrInsufficientFunds)
	}

	if err := s.repoManager.Escrows().Upsert(ctx, *escrow); err != nil {
		s.revert(ctx, transfers)
		undoOpen()
		return 0, fmt.Errorf("failed to store escrow: %w", err)
	}

	if _, err := s.saveRound(ctx, roundId, events); err != nil {
		s.revert(ctx, transfers)
		undoOpen()
		s.restoreEscrow(ctx, prevEscrow)
		return 0, err
	}

	log.WithField("round_id", roundId).Infof("%s claimed %d winnings", caller, amount)
	return amount, nil
}

// openPotAccount opens the pot account of the round funding its reserve from
// the payer's wallet. It reports whether the account was opened by this call.
func (s *service) openPotAccount(
	ctx context.Context, roundId uint64, payer string,
) (bool, error) {
	err := s.values.OpenAccount(ctx, potAccount(roundId), s.potReserve, walletAccount(payer))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ports.ErrAccountExists) {
		return false, nil
	}
	if errors.Is(err, ports.ErrAccountNotFound) {
		return false, domain.ErrInsufficientFunds.Withf("wallet of %s is empty", payer)
	}
	return false, ledgerError(err, domain.ErrInsufficientFunds)
}

func (s *service) restoreEscrow(ctx context.Context, escrow domain.EscrowAccount) {
	if err := s.repoManager.Escrows().Upsert(ctx, escrow); err != nil {
		log.WithError(err).Errorf("failed to restore escrow of %s", escrow.Owner)
	}
}
