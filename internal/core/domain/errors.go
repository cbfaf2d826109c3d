package domain

import "fmt"

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuthorization
	KindState
	KindArithmetic
	KindFunds
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindArithmetic:
		return "arithmetic"
	case KindFunds:
		return "funds"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a named failure of a game operation. Two errors match with
// errors.Is when they share the same Code, regardless of the detail message.
type Error struct {
	Kind   ErrorKind
	Code   string
	Msg    string
	Detail string
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if len(e.Detail) > 0 {
		return fmt.Sprintf("%s: %s", e.Msg, e.Detail)
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of the error carrying extra detail.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{
		Kind:   e.Kind,
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: fmt.Sprintf(format, args...),
	}
}

var (
	// validation
	ErrInvalidBetAmount        = newError(KindValidation, "InvalidBetAmount", "invalid bet amount")
	ErrInvalidSeedCommitment   = newError(KindValidation, "InvalidSeedCommitment", "invalid seed commitment")
	ErrInvalidRevealedSeed     = newError(KindValidation, "InvalidRevealedSeed", "revealed seed does not match commitment")
	ErrInvalidTimeParameters   = newError(KindValidation, "InvalidTimeParameters", "invalid round time parameters")
	ErrInvalidHouseFee         = newError(KindValidation, "InvalidHouseFee", "invalid house fee")
	ErrInvalidHouseFeeConfig   = newError(KindValidation, "InvalidHouseFeeConfig", "house fee exceeds maximum allowed")
	ErrInvalidRoundIdForSeed   = newError(KindValidation, "InvalidRoundIdForSeed", "round id does not match game counter")
	ErrInvalidDepositAmount    = newError(KindValidation, "InvalidDepositAmount", "deposit amount must be greater than zero")
	ErrInvalidWithdrawalAmount = newError(KindValidation, "InvalidWithdrawalAmount", "withdrawal amount must be greater than zero")
	ErrInvalidHouseWallet      = newError(KindValidation, "InvalidHouseWalletAddress", "invalid house wallet address")
	ErrMissingRewardPotAccount = newError(KindValidation, "MissingRewardPotAccount", "missing reward pot token account")

	// authorization
	ErrUnauthorizedAccess       = newError(KindAuthorization, "UnauthorizedAccess", "unauthorized access")
	ErrUnauthorizedEscrowAccess = newError(KindAuthorization, "UnauthorizedEscrowAccess", "unauthorized escrow access")
	ErrNotEligibleForReward     = newError(KindAuthorization, "NotEligibleForReward", "caller is not eligible for rewards")

	// state
	ErrRoundNotActive         = newError(KindState, "RoundNotActive", "round is not active")
	ErrRoundAlreadyActive     = newError(KindState, "RoundAlreadyActive", "round is already active")
	ErrRoundNotEnded          = newError(KindState, "RoundNotEnded", "round has not ended yet")
	ErrRoundStillActive       = newError(KindState, "RoundStillActive", "round is still active")
	ErrBetWindowClosed        = newError(KindState, "BetWindowClosed", "bet window is closed")
	ErrNoPlayers              = newError(KindState, "NoPlayers", "no players in round")
	ErrNoPlayersInRound       = newError(KindState, "NoPlayersInRound", "no players in round")
	ErrMaxPlayersReached      = newError(KindState, "MaxPlayersReached", "max players reached")
	ErrWinnerNotDetermined    = newError(KindState, "WinnerNotDetermined", "winner not determined yet")
	ErrWinningsAlreadyClaimed = newError(KindState, "SolWinningsAlreadyClaimed", "winnings already claimed")
	ErrRewardAlreadyClaimed   = newError(KindState, "RewardAlreadyClaimed", "reward already claimed")
	ErrRoundNotInCorrectState = newError(KindState, "RoundNotInCorrectState", "round is not in the correct state")
	ErrInvalidGameState       = newError(KindState, "InvalidGameState", "invalid game state")
	ErrInvalidStatus          = newError(KindState, "InvalidStatusDiscriminant", "invalid round status")

	// arithmetic
	ErrCalculationError     = newError(KindArithmetic, "CalculationError", "arithmetic overflow")
	ErrGameCalculationError = newError(KindArithmetic, "GameCalculationError", "winner calculation failed")

	// funds
	ErrInsufficientFunds           = newError(KindFunds, "InsufficientFunds", "insufficient funds")
	ErrInsufficientPlatformBalance = newError(KindFunds, "InsufficientPlatformBalance", "insufficient escrow balance")
	ErrWithdrawRentDeficient       = newError(KindFunds, "WithdrawWouldMakeEscrowRentDeficient", "withdrawal would leave escrow below its reserve")

	// lookups
	ErrGameNotInitialized = newError(KindNotFound, "GameNotInitialized", "game not initialized")
	ErrRoundNotFound      = newError(KindNotFound, "RoundNotFound", "round not found")
	ErrEscrowNotFound     = newError(KindNotFound, "EscrowNotFound", "escrow account not found")
	ErrRewardPotNotFound  = newError(KindNotFound, "RewardPotNotFound", "reward pot not found")
)

func wrongState(expected, actual RoundStatus) *Error {
	return ErrRoundNotInCorrectState.Withf("expected %s, got %s", expected, actual)
}
