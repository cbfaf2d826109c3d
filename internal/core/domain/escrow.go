package domain

// EscrowAccount is the platform balance of a user. Balance only ever changes
// through checked arithmetic.
type EscrowAccount struct {
	Owner     string
	Balance   uint64
	CreatedAt int64
	UpdatedAt int64
}

func NewEscrowAccount(owner string, now int64) *EscrowAccount {
	return &EscrowAccount{
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *EscrowAccount) checkOwner(caller string) error {
	if len(caller) <= 0 || caller != e.Owner {
		return ErrUnauthorizedAccess.Withf("escrow of %s", e.Owner)
	}
	return nil
}

func (e *EscrowAccount) Deposit(caller string, amount uint64, now int64) error {
	if err := e.checkOwner(caller); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidDepositAmount
	}
	balance, ok := addUint64(e.Balance, amount)
	if !ok {
		return ErrCalculationError
	}
	e.Balance = balance
	e.UpdatedAt = now
	return nil
}

// Withdraw debits amount plus the withdrawal fee and returns the total debit.
func (e *EscrowAccount) Withdraw(caller string, amount uint64, now int64) (uint64, error) {
	if err := e.checkOwner(caller); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrInvalidWithdrawalAmount
	}
	total, ok := addUint64(amount, WithdrawalFee)
	if !ok {
		return 0, ErrCalculationError
	}
	if e.Balance < total {
		return 0, ErrInsufficientPlatformBalance.Withf(
			"balance %d, required %d", e.Balance, total,
		)
	}
	e.Balance -= total
	e.UpdatedAt = now
	return total, nil
}

func (e *EscrowAccount) DebitForBet(caller string, amount uint64, now int64) error {
	if err := e.checkOwner(caller); err != nil {
		return err
	}
	balance, ok := subUint64(e.Balance, amount)
	if !ok {
		return ErrInsufficientPlatformBalance.Withf(
			"balance %d, required %d", e.Balance, amount,
		)
	}
	e.Balance = balance
	e.UpdatedAt = now
	return nil
}

func (e *EscrowAccount) CreditWinnings(amount uint64, now int64) error {
	balance, ok := addUint64(e.Balance, amount)
	if !ok {
		return ErrCalculationError
	}
	e.Balance = balance
	e.UpdatedAt = now
	return nil
}
