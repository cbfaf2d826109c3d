package application

import (
	"context"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

type Service interface {
	Start() error
	Stop()

	InitGame(
		ctx context.Context, caller, houseWallet, rewardMint string, feeBps uint16,
	) (*domain.GameConfig, error)
	UpdateFee(ctx context.Context, caller string, feeBps uint16) (*domain.GameConfig, error)
	UpdateHouseWallet(ctx context.Context, caller, houseWallet string) (*domain.GameConfig, error)
	SetRewardTransferFee(ctx context.Context, caller string, fee ports.TransferFeeConfig) error

	Deposit(ctx context.Context, caller string, amount uint64) (*domain.EscrowAccount, error)
	Withdraw(ctx context.Context, caller string, amount uint64) (*domain.EscrowAccount, error)

	StartRound(
		ctx context.Context, caller string,
		commitment domain.Seed, duration int64, expectedRoundId uint64,
	) (*domain.Round, error)
	PlaceBet(ctx context.Context, caller string, roundId, amount uint64) (*domain.Round, error)
	FinalizeRound(
		ctx context.Context, caller string, roundId uint64, reveal domain.Seed,
	) (*domain.Round, error)
	ClaimWinnings(ctx context.Context, caller string, roundId uint64) (uint64, error)

	CreateRewardPot(ctx context.Context, caller string, roundId uint64) (*domain.RewardPot, error)
	MintRewardPot(ctx context.Context, caller string, roundId uint64) (*domain.RewardPot, error)
	CalculateEntitlements(ctx context.Context, caller string, roundId uint64) (*domain.Round, error)
	ClaimRewards(ctx context.Context, caller string, roundId uint64) (uint64, error)

	GetGameConfig(ctx context.Context) (*domain.GameConfig, error)
	GetRound(ctx context.Context, roundId uint64) (*domain.Round, error)
	ListRounds(ctx context.Context, startedAfter, startedBefore int64) ([]uint64, error)
	GetEscrow(ctx context.Context, owner string) (*domain.EscrowAccount, error)
	GetRewardPot(ctx context.Context, roundId uint64) (*domain.RewardPot, error)
	GetEventsChannel(ctx context.Context) (<-chan domain.RoundEvent, error)

	// Airdrop funds a wallet out of thin air, only in dev mode.
	Airdrop(ctx context.Context, wallet string, amount uint64) error
}

type Config struct {
	// MintAuthority signs every mint of reward tokens.
	MintAuthority string
	// EscrowReserve and PotReserve are the amounts locked in every escrow and
	// round pot account of the value ledger.
	EscrowReserve uint64
	PotReserve    uint64
	DevMode       bool
	Autopilot     AutopilotConfig
}

// AutopilotConfig drives rounds without an operator: the service starts a
// round with a fresh secret seed, settles it once it ends and starts the next
// one RoundInterval seconds later.
type AutopilotConfig struct {
	Enabled       bool
	RoundDuration int64
	RoundInterval int64
}
