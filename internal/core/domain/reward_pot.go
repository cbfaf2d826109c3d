package domain

import "fmt"

// RewardPot holds the reward tokens minted for a round until players claim
// them.
type RewardPot struct {
	RoundId      uint64
	TokenAccount string
	Authority    string
	TotalMinted  uint64
	CreatedAt    int64
}

// RewardPotAuthority is the derived identity that owns the pot's token
// account and signs reward transfers out of it.
func RewardPotAuthority(roundId uint64) string {
	return fmt.Sprintf("reward-pot:%d", roundId)
}

func NewRewardPot(roundId uint64, tokenAccount string, now int64) *RewardPot {
	return &RewardPot{
		RoundId:      roundId,
		TokenAccount: tokenAccount,
		Authority:    RewardPotAuthority(roundId),
		CreatedAt:    now,
	}
}
