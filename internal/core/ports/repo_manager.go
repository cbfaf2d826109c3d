package ports

import "github.com/spinwheel-network/spinwheel/internal/core/domain"

type RepoManager interface {
	RegisterEventsHandler(func(*domain.Round))
	Events() domain.RoundEventRepository
	Rounds() domain.RoundRepository
	Game() domain.GameRepository
	Escrows() domain.EscrowRepository
	RewardPots() domain.RewardPotRepository
	Close()
}
