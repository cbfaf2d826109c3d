package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

const maxFeeBps = 10_000

type tokenMint struct {
	authority string
	decimals  uint8
	supply    uint64
	withheld  uint64
	fee       ports.TransferFeeConfig
}

type tokenAccount struct {
	mint    string
	owner   string
	balance uint64
}

type tokenLedger struct {
	mints      map[string]*tokenMint
	accounts   map[string]*tokenAccount
	associated map[string]string // mint/owner -> account
	lock       *sync.RWMutex
}

func NewTokenLedger() ports.TokenLedger {
	return &tokenLedger{
		mints:      make(map[string]*tokenMint),
		accounts:   make(map[string]*tokenAccount),
		associated: make(map[string]string),
		lock:       &sync.RWMutex{},
	}
}

func (l *tokenLedger) CreateMint(
	_ context.Context, mint, authority string, decimals uint8,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.mints[mint]; ok {
		return fmt.Errorf("%w: mint %s", ports.ErrAccountExists, mint)
	}
	l.mints[mint] = &tokenMint{authority: authority, decimals: decimals}
	return nil
}

func (l *tokenLedger) HasMint(_ context.Context, mint string) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	_, ok := l.mints[mint]
	return ok, nil
}

func (l *tokenLedger) CreateAccount(_ context.Context, mint, owner string) (string, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.createAccount(mint, owner)
}

func (l *tokenLedger) GetOrCreateAccount(
	_ context.Context, mint, owner string,
) (string, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if id, ok := l.associated[associatedKey(mint, owner)]; ok {
		return id, nil
	}
	return l.createAccount(mint, owner)
}

func (l *tokenLedger) MintTo(
	_ context.Context, mint, account string, amount uint64, signer string,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	m, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("%w: mint %s", ports.ErrAccountNotFound, mint)
	}
	if signer != m.authority {
		return fmt.Errorf("%w: %s is not the mint authority", ports.ErrUnauthorizedSigner, signer)
	}
	acc, err := l.accountOfMint(mint, account)
	if err != nil {
		return err
	}
	if m.supply+amount < m.supply || acc.balance+amount < acc.balance {
		return ports.ErrLedgerAmountOverflow
	}

	m.supply += amount
	acc.balance += amount
	return nil
}

func (l *tokenLedger) Transfer(
	_ context.Context, mint, from, to string, amount uint64, signer string,
) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	m, ok := l.mints[mint]
	if !ok {
		return 0, fmt.Errorf("%w: mint %s", ports.ErrAccountNotFound, mint)
	}
	src, err := l.accountOfMint(mint, from)
	if err != nil {
		return 0, err
	}
	dst, err := l.accountOfMint(mint, to)
	if err != nil {
		return 0, err
	}
	if signer != src.owner {
		return 0, fmt.Errorf("%w: %s does not own %s", ports.ErrUnauthorizedSigner, signer, from)
	}
	if src.balance < amount {
		return 0, fmt.Errorf(
			"%w: %s has %d, needs %d", ports.ErrInsufficientBalance, from, src.balance, amount,
		)
	}

	fee := transferFee(m.fee, amount)
	received := amount - fee
	if dst.balance+received < dst.balance {
		return 0, ports.ErrLedgerAmountOverflow
	}

	src.balance -= amount
	dst.balance += received
	m.withheld += fee
	return received, nil
}

func (l *tokenLedger) Balance(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	acc, ok := l.accounts[account]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ports.ErrAccountNotFound, account)
	}
	return acc.balance, nil
}

func (l *tokenLedger) SetTransferFee(
	_ context.Context, mint string, fee ports.TransferFeeConfig, signer string,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	m, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("%w: mint %s", ports.ErrAccountNotFound, mint)
	}
	if signer != m.authority {
		return fmt.Errorf("%w: %s is not the mint authority", ports.ErrUnauthorizedSigner, signer)
	}
	if fee.FeeBps > maxFeeBps {
		return fmt.Errorf("transfer fee %d bps exceeds %d", fee.FeeBps, maxFeeBps)
	}
	m.fee = fee
	return nil
}

func (l *tokenLedger) GetTransferFee(
	_ context.Context, mint string,
) (ports.TransferFeeConfig, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	m, ok := l.mints[mint]
	if !ok {
		return ports.TransferFeeConfig{}, fmt.Errorf("%w: mint %s", ports.ErrAccountNotFound, mint)
	}
	return m.fee, nil
}

func (l *tokenLedger) createAccount(mint, owner string) (string, error) {
	if _, ok := l.mints[mint]; !ok {
		return "", fmt.Errorf("%w: mint %s", ports.ErrAccountNotFound, mint)
	}

	id := uuid.New().String()
	l.accounts[id] = &tokenAccount{mint: mint, owner: owner}

	key := associatedKey(mint, owner)
	if _, ok := l.associated[key]; !ok {
		l.associated[key] = id
	}
	return id, nil
}

func (l *tokenLedger) accountOfMint(mint, id string) (*tokenAccount, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrAccountNotFound, id)
	}
	if acc.mint != mint {
		return nil, fmt.Errorf("account %s does not hold mint %s", id, mint)
	}
	return acc, nil
}

func transferFee(cfg ports.TransferFeeConfig, amount uint64) uint64 {
	if cfg.FeeBps == 0 || amount == 0 {
		return 0
	}
	// amount * bps can't overflow for bps <= 10000 once split in two parts
	fee := (amount/maxFeeBps)*uint64(cfg.FeeBps) + (amount%maxFeeBps)*uint64(cfg.FeeBps)/maxFeeBps
	if cfg.MaxFee > 0 && fee > cfg.MaxFee {
		fee = cfg.MaxFee
	}
	return fee
}

func associatedKey(mint, owner string) string {
	return mint + "/" + owner
}
