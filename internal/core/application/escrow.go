package application

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

func (s *service) Deposit(
	ctx context.Context, caller string, amount uint64,
) (*domain.EscrowAccount, error) {
	if len(caller) <= 0 {
		return nil, domain.ErrUnauthorizedEscrowAccess
	}

	release := s.locks.acquire(escrowLockKey(caller))
	defer release()

	now := s.now()
	escrow, err := s.getOrCreateEscrow(ctx, caller, now)
	if err != nil {
		return nil, err
	}
	if err := escrow.Deposit(caller, amount, now); err != nil {
		return nil, err
	}

	opened, err := s.ensureEscrowAccount(ctx, caller)
	if err != nil {
		return nil, err
	}
	transfers := []ports.Transfer{
		{From: walletAccount(caller), To: escrowAccount(caller), Amount: amount},
	}
	if err := s.values.Transfer(ctx, transfers...); err != nil {
		if opened {
			s.closeAccount(ctx, escrowAccount(caller), caller)
		}
		if errors.Is(err, ports.ErrAccountNotFound) {
			return nil, domain.ErrInsufficientFunds.Withf("wallet of %s is empty", caller)
		}
		return nil, ledgerError(err, domain.ErrInsufficientFunds)
	}

	if err := s.repoManager.Escrows().Upsert(ctx, *escrow); err != nil {
		s.revert(ctx, transfers)
		if opened {
			s.closeAccount(ctx, escrowAccount(caller), caller)
		}
		return nil, fmt.Errorf("failed to store escrow: %w", err)
	}

	log.WithField("owner", caller).Debugf("deposited %d into escrow", amount)
	return escrow, nil
}

func (s *service) Withdraw(
	ctx context.Context, caller string, amount uint64,
) (*domain.EscrowAccount, error) {
	release := s.locks.acquire(escrowLockKey(caller))
	defer release()

	escrow, err := s.repoManager.Escrows().Get(ctx, caller)
	if err != nil {
		return nil, err
	}

	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := escrow.Withdraw(caller, amount, s.now()); err != nil {
		return nil, err
	}

	transfers := []ports.Transfer{
		{From: escrowAccount(caller), To: walletAccount(game.HouseWallet), Amount: domain.WithdrawalFee},
		{From: escrowAccount(caller), To: walletAccount(caller), Amount: amount},
	}
	if err := s.values.Transfer(ctx, transfers...); err != nil {
		return nil, ledgerError(err, domain.ErrWithdrawRentDeficient)
	}

	if err := s.repoManager.Escrows().Upsert(ctx, *escrow); err != nil {
		s.revert(ctx, transfers)
		return nil, fmt.Errorf("failed to store escrow: %w", err)
	}

	log.WithField("owner", caller).Debugf("withdrew %d from escrow", amount)
	return escrow, nil
}

func (s *service) getOrCreateEscrow(
	ctx context.Context, owner string, now int64,
) (*domain.EscrowAccount, error) {
	escrow, err := s.repoManager.Escrows().Get(ctx, owner)
	if err == nil {
		return escrow, nil
	}
	if !errors.Is(err, domain.ErrEscrowNotFound) {
		return nil, err
	}
	return domain.NewEscrowAccount(owner, now), nil
}
