package domain

const (
	MaxPlayers        = 10
	MinBet            = uint64(10_000_000)
	MaxBet            = uint64(10_000_000_000)
	MinRoundDuration  = int64(1)
	MaxRoundDuration  = int64(300)
	MaxHouseFeeBps    = uint16(500)
	DefaultHouseFee   = uint16(10)
	WithdrawalFee     = uint64(10_000_000)
	RewardPerRound    = uint64(1_000_000)
	RewardDecimals    = uint8(6)
	basisPointsFactor = uint64(10_000)
)

// GameConfig is the singleton configuration of the game. It is created once
// and then mutated only by authority gated updates and by round starts.
type GameConfig struct {
	Authority    string
	HouseWallet  string
	FeeBps       uint16
	RoundCounter uint64
	RewardMint   string
	CreatedAt    int64
	UpdatedAt    int64
}

func NewGameConfig(
	authority, houseWallet, rewardMint string, feeBps uint16, now int64,
) (*GameConfig, error) {
	if len(authority) <= 0 {
		return nil, ErrUnauthorizedAccess.Withf("missing authority")
	}
	if len(houseWallet) <= 0 {
		return nil, ErrInvalidHouseWallet
	}
	if feeBps > MaxHouseFeeBps {
		return nil, ErrInvalidHouseFeeConfig.Withf("%d > %d", feeBps, MaxHouseFeeBps)
	}
	return &GameConfig{
		Authority:   authority,
		HouseWallet: houseWallet,
		FeeBps:      feeBps,
		RewardMint:  rewardMint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *GameConfig) IsAuthority(caller string) bool {
	return len(caller) > 0 && caller == g.Authority
}

func (g *GameConfig) UpdateFee(caller string, feeBps uint16, now int64) error {
	if !g.IsAuthority(caller) {
		return ErrUnauthorizedAccess
	}
	if feeBps > MaxHouseFeeBps {
		return ErrInvalidHouseFeeConfig.Withf("%d > %d", feeBps, MaxHouseFeeBps)
	}
	g.FeeBps = feeBps
	g.UpdatedAt = now
	return nil
}

func (g *GameConfig) UpdateHouseWallet(caller, houseWallet string, now int64) error {
	if !g.IsAuthority(caller) {
		return ErrUnauthorizedAccess
	}
	if len(houseWallet) <= 0 {
		return ErrInvalidHouseWallet
	}
	g.HouseWallet = houseWallet
	g.UpdatedAt = now
	return nil
}

// NextRoundId checks that the caller is starting the round the counter
// expects and returns the id of the new round. The counter is not touched
// until CommitRound is called.
func (g *GameConfig) NextRoundId(caller string, expectedRoundId uint64) (uint64, error) {
	if !g.IsAuthority(caller) {
		return 0, ErrUnauthorizedAccess
	}
	if expectedRoundId != g.RoundCounter {
		return 0, ErrInvalidRoundIdForSeed.Withf(
			"expected %d, got %d", g.RoundCounter, expectedRoundId,
		)
	}
	next, ok := addUint64(g.RoundCounter, 1)
	if !ok {
		return 0, ErrCalculationError
	}
	return next, nil
}

func (g *GameConfig) CommitRound(roundId uint64, now int64) {
	g.RoundCounter = roundId
	g.UpdatedAt = now
}

// HouseFee returns floor(pot * fee_bps / 10000).
func (g *GameConfig) HouseFee(pot uint64) (uint64, error) {
	return houseFee(pot, g.FeeBps)
}

func houseFee(pot uint64, feeBps uint16) (uint64, error) {
	if feeBps > MaxHouseFeeBps {
		return 0, ErrInvalidHouseFee
	}
	product, ok := mulUint64(pot, uint64(feeBps))
	if !ok {
		return 0, ErrCalculationError
	}
	return product / basisPointsFactor, nil
}
