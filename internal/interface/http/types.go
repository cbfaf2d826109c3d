package httpservice

import (
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

type initGameRequest struct {
	HouseWallet string `json:"house_wallet"`
	RewardMint  string `json:"reward_mint"`
	FeeBps      uint16 `json:"fee_bps"`
}

type updateFeeRequest struct {
	FeeBps uint16 `json:"fee_bps"`
}

type updateHouseWalletRequest struct {
	HouseWallet string `json:"house_wallet"`
}

type transferFeeRequest struct {
	FeeBps uint16 `json:"fee_bps"`
	MaxFee uint64 `json:"max_fee"`
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type airdropRequest struct {
	Wallet string `json:"wallet"`
	Amount uint64 `json:"amount"`
}

type startRoundRequest struct {
	Commitment      domain.Seed `json:"commitment"`
	Duration        int64       `json:"duration"`
	ExpectedRoundId uint64      `json:"expected_round_id"`
}

type finalizeRoundRequest struct {
	RevealedSeed domain.Seed `json:"revealed_seed"`
}

type gameResponse struct {
	Authority    string `json:"authority"`
	HouseWallet  string `json:"house_wallet"`
	FeeBps       uint16 `json:"fee_bps"`
	RoundCounter uint64 `json:"round_counter"`
	RewardMint   string `json:"reward_mint"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

type escrowResponse struct {
	Owner     string `json:"owner"`
	Balance   uint64 `json:"balance"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type betResponse struct {
	Player string `json:"player"`
	Amount uint64 `json:"amount"`
}

type entitlementResponse struct {
	Player  string `json:"player"`
	Stake   uint64 `json:"stake"`
	Reward  uint64 `json:"reward"`
	Claimed bool   `json:"claimed"`
}

type roundResponse struct {
	Id                uint64                `json:"id"`
	Status            string                `json:"status"`
	StartTime         int64                 `json:"start_time"`
	EndTime           int64                 `json:"end_time"`
	Commitment        domain.Seed           `json:"commitment"`
	RevealedSeed      *domain.Seed          `json:"revealed_seed,omitempty"`
	Bets              []betResponse         `json:"bets"`
	TotalPot          uint64                `json:"total_pot"`
	HouseFee          uint64                `json:"house_fee"`
	WinnerIndex       *int                  `json:"winner_index,omitempty"`
	Winner            string                `json:"winner,omitempty"`
	WinnerAmount      uint64                `json:"winner_amount"`
	WinnerClaimed     bool                  `json:"winner_claimed"`
	WinningsPaid      uint64                `json:"winnings_paid"`
	RewardPot         string                `json:"reward_pot,omitempty"`
	TotalRewardMinted uint64                `json:"total_reward_minted"`
	Entitlements      []entitlementResponse `json:"entitlements"`
}

type roundsResponse struct {
	Rounds []uint64 `json:"rounds"`
}

type rewardPotResponse struct {
	RoundId      uint64 `json:"round_id"`
	TokenAccount string `json:"token_account"`
	Authority    string `json:"authority"`
	TotalMinted  uint64 `json:"total_minted"`
	CreatedAt    int64  `json:"created_at"`
}

type claimResponse struct {
	RoundId uint64 `json:"round_id"`
	Amount  uint64 `json:"amount"`
}

type eventResponse struct {
	Type    string            `json:"type"`
	RoundId uint64            `json:"round_id"`
	Event   domain.RoundEvent `json:"event"`
}

func toGameResponse(game *domain.GameConfig) gameResponse {
	return gameResponse{
		Authority:    game.Authority,
		HouseWallet:  game.HouseWallet,
		FeeBps:       game.FeeBps,
		RoundCounter: game.RoundCounter,
		RewardMint:   game.RewardMint,
		CreatedAt:    game.CreatedAt,
		UpdatedAt:    game.UpdatedAt,
	}
}

func toEscrowResponse(escrow *domain.EscrowAccount) escrowResponse {
	return escrowResponse{
		Owner:     escrow.Owner,
		Balance:   escrow.Balance,
		CreatedAt: escrow.CreatedAt,
		UpdatedAt: escrow.UpdatedAt,
	}
}

func toRoundResponse(round *domain.Round) roundResponse {
	bets := make([]betResponse, 0, len(round.Bets))
	for _, bet := range round.Bets {
		bets = append(bets, betResponse{Player: bet.Player, Amount: bet.Amount})
	}
	entitlements := make([]entitlementResponse, 0, len(round.Entitlements))
	for _, e := range round.Entitlements {
		entitlements = append(entitlements, entitlementResponse{
			Player:  e.Player,
			Stake:   e.Stake,
			Reward:  e.Reward,
			Claimed: e.Claimed,
		})
	}

	return roundResponse{
		Id:                round.Id,
		Status:            round.Status.String(),
		StartTime:         round.StartTime,
		EndTime:           round.EndTime,
		Commitment:        round.Commitment,
		RevealedSeed:      round.RevealedSeed,
		Bets:              bets,
		TotalPot:          round.TotalPot,
		HouseFee:          round.HouseFee,
		WinnerIndex:       round.WinnerIndex,
		Winner:            round.Winner,
		WinnerAmount:      round.WinnerAmount,
		WinnerClaimed:     round.WinnerClaimed,
		WinningsPaid:      round.WinningsPaid,
		RewardPot:         round.RewardPot,
		TotalRewardMinted: round.TotalRewardMinted,
		Entitlements:      entitlements,
	}
}

func toRewardPotResponse(pot *domain.RewardPot) rewardPotResponse {
	return rewardPotResponse{
		RoundId:      pot.RoundId,
		TokenAccount: pot.TokenAccount,
		Authority:    pot.Authority,
		TotalMinted:  pot.TotalMinted,
		CreatedAt:    pot.CreatedAt,
	}
}
