package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

const gameLockKey = "game"

func walletAccount(owner string) string {
	return fmt.Sprintf("wallet:%s", owner)
}

func escrowAccount(owner string) string {
	return fmt.Sprintf("escrow:%s", owner)
}

func potAccount(roundId uint64) string {
	return fmt.Sprintf("pot:%d", roundId)
}

func roundLockKey(roundId uint64) string {
	return fmt.Sprintf("round:%d", roundId)
}

func escrowLockKey(owner string) string {
	return fmt.Sprintf("escrow:%s", owner)
}

// keyedLocks serializes operations touching the same game entity while
// letting operations on different rounds or escrows run in parallel.
// Locks must be taken in the order game, round, escrow.
type keyedLocks struct {
	lock  *sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		lock:  &sync.Mutex{},
		locks: make(map[string]*refLock),
	}
}

// acquire blocks until the lock for key is held and returns its release func.
func (k *keyedLocks) acquire(key string) func() {
	k.lock.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.lock.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		k.lock.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.lock.Unlock()
	}
}

// ledgerError translates a value ledger failure into the game error the
// caller sees. belowReserve is returned when the source account would be
// left under its reserve.
func ledgerError(err error, belowReserve *domain.Error) error {
	switch {
	case errors.Is(err, ports.ErrBelowReserve):
		return belowReserve.Withf("%s", err)
	case errors.Is(err, ports.ErrInsufficientBalance):
		return domain.ErrInsufficientFunds.Withf("%s", err)
	case errors.Is(err, ports.ErrLedgerAmountOverflow):
		return domain.ErrCalculationError.Withf("%s", err)
	default:
		return fmt.Errorf("failed to transfer funds: %w", err)
	}
}

func reverseTransfers(transfers []ports.Transfer) []ports.Transfer {
	reversed := make([]ports.Transfer, 0, len(transfers))
	for i := len(transfers) - 1; i >= 0; i-- {
		t := transfers[i]
		reversed = append(reversed, ports.Transfer{From: t.To, To: t.From, Amount: t.Amount})
	}
	return reversed
}

// revert undoes transfers already applied by an operation whose changes
// could not be persisted.
func (s *service) revert(ctx context.Context, transfers []ports.Transfer) {
	if err := s.values.Transfer(ctx, reverseTransfers(transfers)...); err != nil {
		log.WithError(err).Errorf("failed to revert %d transfers", len(transfers))
	}
}

// ensureEscrowAccount opens the backing ledger account of the owner's escrow
// funding its reserve from the owner's wallet. It reports whether the account
// was opened by this call.
func (s *service) ensureEscrowAccount(ctx context.Context, owner string) (bool, error) {
	account := escrowAccount(owner)
	ok, err := s.values.HasAccount(ctx, account)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.values.OpenAccount(
		ctx, account, s.escrowReserve, walletAccount(owner),
	); err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			return false, domain.ErrInsufficientFunds.Withf("wallet of %s is empty", owner)
		}
		return false, ledgerError(err, domain.ErrInsufficientFunds)
	}
	return true, nil
}

// closeAccount gives back the reserve of a ledger account opened by a
// failed operation.
func (s *service) closeAccount(ctx context.Context, account, payer string) {
	if err := s.values.CloseAccount(ctx, account, walletAccount(payer)); err != nil {
		log.WithError(err).Errorf("failed to close ledger account %s", account)
	}
}
