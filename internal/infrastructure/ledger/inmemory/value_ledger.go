package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

type valueAccount struct {
	balance uint64
	reserve uint64
}

type valueLedger struct {
	accounts map[string]*valueAccount
	lock     *sync.RWMutex
}

func NewValueLedger() ports.ValueLedger {
	return &valueLedger{
		accounts: make(map[string]*valueAccount),
		lock:     &sync.RWMutex{},
	}
}

func (l *valueLedger) OpenAccount(
	_ context.Context, account string, reserve uint64, payer string,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.accounts[account]; ok {
		return fmt.Errorf("%w: %s", ports.ErrAccountExists, account)
	}

	if reserve > 0 {
		from, ok := l.accounts[payer]
		if !ok {
			return fmt.Errorf("%w: %s", ports.ErrAccountNotFound, payer)
		}
		if from.balance < reserve {
			return fmt.Errorf(
				"%w: %s has %d, reserve requires %d",
				ports.ErrInsufficientBalance, payer, from.balance, reserve,
			)
		}
		if from.balance-reserve < from.reserve {
			return fmt.Errorf("%w: %s", ports.ErrBelowReserve, payer)
		}
		from.balance -= reserve
	}

	l.accounts[account] = &valueAccount{balance: reserve, reserve: reserve}
	return nil
}

func (l *valueLedger) CloseAccount(
	_ context.Context, account, beneficiary string,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	acc, ok := l.accounts[account]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrAccountNotFound, account)
	}
	if acc.balance > 0 {
		if len(beneficiary) <= 0 {
			return fmt.Errorf("missing beneficiary for %d left in %s", acc.balance, account)
		}
		to, ok := l.accounts[beneficiary]
		if !ok {
			to = &valueAccount{}
			l.accounts[beneficiary] = to
		}
		if to.balance+acc.balance < to.balance {
			return fmt.Errorf("%w: %s", ports.ErrLedgerAmountOverflow, beneficiary)
		}
		to.balance += acc.balance
	}

	delete(l.accounts, account)
	return nil
}

func (l *valueLedger) HasAccount(_ context.Context, account string) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	_, ok := l.accounts[account]
	return ok, nil
}

func (l *valueLedger) Balance(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	acc, ok := l.accounts[account]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ports.ErrAccountNotFound, account)
	}
	return acc.balance, nil
}

func (l *valueLedger) Available(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	acc, ok := l.accounts[account]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ports.ErrAccountNotFound, account)
	}
	return acc.balance - acc.reserve, nil
}

func (l *valueLedger) Transfer(_ context.Context, transfers ...ports.Transfer) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	// stage every balance change and apply them only if all transfers are valid
	staged := make(map[string]*valueAccount)
	get := func(id string, create bool) (*valueAccount, bool) {
		if acc, ok := staged[id]; ok {
			return acc, true
		}
		acc, ok := l.accounts[id]
		if !ok {
			if !create {
				return nil, false
			}
			acc = &valueAccount{}
		}
		cpy := *acc
		staged[id] = &cpy
		return &cpy, true
	}

	for _, t := range transfers {
		if t.Amount == 0 {
			continue
		}
		from, ok := get(t.From, false)
		if !ok {
			return fmt.Errorf("%w: %s", ports.ErrAccountNotFound, t.From)
		}
		if from.balance < t.Amount {
			return fmt.Errorf(
				"%w: %s has %d, needs %d",
				ports.ErrInsufficientBalance, t.From, from.balance, t.Amount,
			)
		}
		if from.balance-t.Amount < from.reserve {
			return fmt.Errorf("%w: %s", ports.ErrBelowReserve, t.From)
		}
		to, _ := get(t.To, true)
		if to.balance+t.Amount < to.balance {
			return fmt.Errorf("%w: %s", ports.ErrLedgerAmountOverflow, t.To)
		}
		from.balance -= t.Amount
		to.balance += t.Amount
	}

	for id, acc := range staged {
		l.accounts[id] = acc
	}
	return nil
}

func (l *valueLedger) Airdrop(_ context.Context, account string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	acc, ok := l.accounts[account]
	if !ok {
		acc = &valueAccount{}
		l.accounts[account] = acc
	}
	if acc.balance+amount < acc.balance {
		return fmt.Errorf("%w: %s", ports.ErrLedgerAmountOverflow, account)
	}
	acc.balance += amount
	return nil
}
