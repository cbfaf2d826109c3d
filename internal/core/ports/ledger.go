package ports

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound      = errors.New("ledger account not found")
	ErrAccountExists        = errors.New("ledger account already exists")
	ErrInsufficientBalance  = errors.New("insufficient ledger balance")
	ErrBelowReserve         = errors.New("transfer would leave account below its reserve")
	ErrUnauthorizedSigner   = errors.New("signer is not allowed to move funds")
	ErrLedgerAmountOverflow = errors.New("ledger amount overflow")
)

type Transfer struct {
	From   string
	To     string
	Amount uint64
}

// ValueLedger moves currency units between accounts. Every account may carry
// a reserve that transfers out of it can never breach.
type ValueLedger interface {
	// OpenAccount creates the account and funds its reserve from payer.
	OpenAccount(ctx context.Context, account string, reserve uint64, payer string) error
	// CloseAccount moves the whole balance of the account, reserve included,
	// to beneficiary and deletes the account.
	CloseAccount(ctx context.Context, account, beneficiary string) error
	HasAccount(ctx context.Context, account string) (bool, error)
	Balance(ctx context.Context, account string) (uint64, error)
	// Available is the balance that can leave the account without breaking
	// its reserve.
	Available(ctx context.Context, account string) (uint64, error)
	// Transfer applies all transfers or none of them.
	Transfer(ctx context.Context, transfers ...Transfer) error
	Airdrop(ctx context.Context, account string, amount uint64) error
}

type TransferFeeConfig struct {
	FeeBps uint16
	MaxFee uint64
}

// TokenLedger holds reward token mints and accounts.
type TokenLedger interface {
	CreateMint(ctx context.Context, mint, authority string, decimals uint8) error
	HasMint(ctx context.Context, mint string) (bool, error)
	CreateAccount(ctx context.Context, mint, owner string) (string, error)
	GetOrCreateAccount(ctx context.Context, mint, owner string) (string, error)
	MintTo(ctx context.Context, mint, account string, amount uint64, signer string) error
	// Transfer moves amount tokens signed by the source account owner and
	// returns the amount received after transfer fees.
	Transfer(
		ctx context.Context, mint, from, to string, amount uint64, signer string,
	) (uint64, error)
	Balance(ctx context.Context, account string) (uint64, error)
	SetTransferFee(ctx context.Context, mint string, fee TransferFeeConfig, signer string) error
	GetTransferFee(ctx context.Context, mint string) (TransferFeeConfig, error)
}
