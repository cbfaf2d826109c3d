package domain

const RoundTopic = "round"

type EventType int

const (
	EventTypeUndefined EventType = iota
	EventTypeRoundStarted
	EventTypeBetPlaced
	EventTypeWinnerDetermined
	EventTypeFeeSettled
	EventTypeRewardPotCreated
	EventTypeRewardTokensMinted
	EventTypeEntitlementsCalculated
	EventTypeWinningsClaimed
	EventTypeRewardClaimed
)

func (t EventType) String() string {
	switch t {
	case EventTypeRoundStarted:
		return "round_started"
	case EventTypeBetPlaced:
		return "bet_placed"
	case EventTypeWinnerDetermined:
		return "winner_determined"
	case EventTypeFeeSettled:
		return "fee_settled"
	case EventTypeRewardPotCreated:
		return "reward_pot_created"
	case EventTypeRewardTokensMinted:
		return "reward_tokens_minted"
	case EventTypeEntitlementsCalculated:
		return "entitlements_calculated"
	case EventTypeWinningsClaimed:
		return "winnings_claimed"
	case EventTypeRewardClaimed:
		return "reward_claimed"
	default:
		return "undefined"
	}
}

type RoundEvent interface {
	GetType() EventType
	GetRoundId() uint64
}

func (e RoundStarted) GetType() EventType           { return EventTypeRoundStarted }
func (e BetPlaced) GetType() EventType              { return EventTypeBetPlaced }
func (e WinnerDetermined) GetType() EventType       { return EventTypeWinnerDetermined }
func (e FeeSettled) GetType() EventType             { return EventTypeFeeSettled }
func (e RewardPotCreated) GetType() EventType       { return EventTypeRewardPotCreated }
func (e RewardTokensMinted) GetType() EventType     { return EventTypeRewardTokensMinted }
func (e EntitlementsCalculated) GetType() EventType { return EventTypeEntitlementsCalculated }
func (e WinningsClaimed) GetType() EventType        { return EventTypeWinningsClaimed }
func (e RewardClaimed) GetType() EventType          { return EventTypeRewardClaimed }

func (e RoundStarted) GetRoundId() uint64           { return e.Id }
func (e BetPlaced) GetRoundId() uint64              { return e.Id }
func (e WinnerDetermined) GetRoundId() uint64       { return e.Id }
func (e FeeSettled) GetRoundId() uint64             { return e.Id }
func (e RewardPotCreated) GetRoundId() uint64       { return e.Id }
func (e RewardTokensMinted) GetRoundId() uint64     { return e.Id }
func (e EntitlementsCalculated) GetRoundId() uint64 { return e.Id }
func (e WinningsClaimed) GetRoundId() uint64        { return e.Id }
func (e RewardClaimed) GetRoundId() uint64          { return e.Id }

type RoundStarted struct {
	Id         uint64
	Commitment Seed
	StartTime  int64
	EndTime    int64
}

type BetPlaced struct {
	Id        uint64
	Player    string
	Amount    uint64
	Timestamp int64
}

type WinnerDetermined struct {
	Id           uint64
	RevealedSeed Seed
	WinnerIndex  int
	Winner       string
	Timestamp    int64
}

type FeeSettled struct {
	Id           uint64
	HouseWallet  string
	HouseFee     uint64
	WinnerAmount uint64
}

type RewardPotCreated struct {
	Id           uint64
	TokenAccount string
	Timestamp    int64
}

type RewardTokensMinted struct {
	Id     uint64
	Amount uint64
}

type EntitlementsCalculated struct {
	Id           uint64
	Entitlements []Entitlement
}

type WinningsClaimed struct {
	Id     uint64
	Winner string
	Amount uint64
}

type RewardClaimed struct {
	Id     uint64
	Player string
	Amount uint64
}
