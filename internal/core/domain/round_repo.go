package domain

import "context"

type RoundEventRepository interface {
	Save(ctx context.Context, id uint64, events ...RoundEvent) (*Round, error)
	Load(ctx context.Context, id uint64) (*Round, error)
	RegisterEventsHandler(func(*Round))
	Close()
}

type RoundRepository interface {
	AddOrUpdateRound(ctx context.Context, round Round) error
	GetRoundWithId(ctx context.Context, id uint64) (*Round, error)
	GetRoundsIds(ctx context.Context, startedAfter, startedBefore int64) ([]uint64, error)
	GetRoundsWithStatus(ctx context.Context, status RoundStatus) ([]Round, error)
	Close()
}

type GameRepository interface {
	Get(ctx context.Context) (*GameConfig, error)
	Upsert(ctx context.Context, game GameConfig) error
	Close()
}

type EscrowRepository interface {
	Get(ctx context.Context, owner string) (*EscrowAccount, error)
	Upsert(ctx context.Context, escrow EscrowAccount) error
	Close()
}

type RewardPotRepository interface {
	Add(ctx context.Context, pot RewardPot) error
	Update(ctx context.Context, pot RewardPot) error
	Get(ctx context.Context, roundId uint64) (*RewardPot, error)
	Close()
}
