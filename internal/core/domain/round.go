package domain

const (
	UndefinedStatus RoundStatus = iota
	ActiveStatus
	WinnerDeterminedStatus
	FeeSettledStatus
	RewardPotCreatedStatus
	TokensMintedStatus
	RewardsProcessedStatus
)

type RoundStatus int

func (s RoundStatus) String() string {
	switch s {
	case ActiveStatus:
		return "ACTIVE"
	case WinnerDeterminedStatus:
		return "WINNER_DETERMINED"
	case FeeSettledStatus:
		return "FEE_SETTLED"
	case RewardPotCreatedStatus:
		return "REWARD_POT_CREATED"
	case TokensMintedStatus:
		return "TOKENS_MINTED"
	case RewardsProcessedStatus:
		return "REWARDS_PROCESSED"
	default:
		return "UNDEFINED"
	}
}

func ParseRoundStatus(str string) (RoundStatus, error) {
	for s := ActiveStatus; s <= RewardsProcessedStatus; s++ {
		if s.String() == str {
			return s, nil
		}
	}
	return UndefinedStatus, ErrInvalidStatus.Withf("%s", str)
}

type Bet struct {
	Player string
	Amount uint64
}

type Entitlement struct {
	Player  string
	Stake   uint64
	Reward  uint64
	Claimed bool
}

type Round struct {
	Id                uint64
	StartTime         int64
	EndTime           int64
	Commitment        Seed
	RevealedSeed      *Seed
	Status            RoundStatus
	Bets              []Bet
	TotalPot          uint64
	HouseFee          uint64
	WinnerIndex       *int
	Winner            string
	WinnerAmount      uint64
	WinnerClaimed     bool
	WinningsPaid      uint64
	RewardPot         string
	TotalRewardMinted uint64
	Entitlements      []Entitlement
	Version           uint
	changes           []RoundEvent
}

func NewRound(id uint64) *Round {
	return &Round{
		Id:      id,
		Bets:    make([]Bet, 0, MaxPlayers),
		changes: make([]RoundEvent, 0),
	}
}

func NewRoundFromEvents(events []RoundEvent) *Round {
	r := &Round{}

	for _, event := range events {
		r.On(event, true)
	}

	r.changes = append([]RoundEvent{}, events...)

	return r
}

func (r *Round) Events() []RoundEvent {
	return r.changes
}

func (r *Round) On(event RoundEvent, replayed bool) {
	switch e := event.(type) {
	case RoundStarted:
		r.Status = ActiveStatus
		r.Id = e.Id
		r.Commitment = e.Commitment
		r.StartTime = e.StartTime
		r.EndTime = e.EndTime
		if r.Bets == nil {
			r.Bets = make([]Bet, 0, MaxPlayers)
		}
	case BetPlaced:
		if _, i := r.BetOf(e.Player); i >= 0 {
			r.Bets[i].Amount += e.Amount
		} else {
			r.Bets = append(r.Bets, Bet{Player: e.Player, Amount: e.Amount})
		}
		r.TotalPot += e.Amount
	case WinnerDetermined:
		r.Status = WinnerDeterminedStatus
		seed := e.RevealedSeed
		r.RevealedSeed = &seed
		index := e.WinnerIndex
		r.WinnerIndex = &index
		r.Winner = e.Winner
	case FeeSettled:
		r.Status = FeeSettledStatus
		r.HouseFee = e.HouseFee
		r.WinnerAmount = e.WinnerAmount
	case RewardPotCreated:
		r.Status = RewardPotCreatedStatus
		r.RewardPot = e.TokenAccount
	case RewardTokensMinted:
		r.Status = TokensMintedStatus
		r.TotalRewardMinted = e.Amount
	case EntitlementsCalculated:
		r.Status = RewardsProcessedStatus
		r.Entitlements = append([]Entitlement{}, e.Entitlements...)
	case WinningsClaimed:
		r.WinnerClaimed = true
		r.WinningsPaid = e.Amount
	case RewardClaimed:
		if _, i := r.EntitlementOf(e.Player); i >= 0 {
			r.Entitlements[i].Claimed = true
		}
	}

	if replayed {
		r.Version++
	}
}

func (r *Round) PlayerCount() int {
	return len(r.Bets)
}

func (r *Round) BetOf(player string) (*Bet, int) {
	for i := range r.Bets {
		if r.Bets[i].Player == player {
			return &r.Bets[i], i
		}
	}
	return nil, -1
}

func (r *Round) EntitlementOf(player string) (*Entitlement, int) {
	for i := range r.Entitlements {
		if r.Entitlements[i].Player == player {
			return &r.Entitlements[i], i
		}
	}
	return nil, -1
}

func (r *Round) IsActive() bool {
	return r.Status == ActiveStatus
}

// IsSettlementReady reports whether the winner is known and the house fee
// has been paid out.
func (r *Round) IsSettlementReady() bool {
	return r.Status >= FeeSettledStatus
}

// IsClosed reports whether no further mutating operation is legal.
func (r *Round) IsClosed() bool {
	if r.Status != RewardsProcessedStatus || !r.WinnerClaimed {
		return false
	}
	for _, e := range r.Entitlements {
		if !e.Claimed {
			return false
		}
	}
	return true
}

// ExpectStatus fails with a wrong state error naming both statuses unless
// the round is in the given one.
func (r *Round) ExpectStatus(status RoundStatus) error {
	if r.Status != status {
		return wrongState(status, r.Status)
	}
	return nil
}

func (r *Round) Start(commitment Seed, now, duration int64) ([]RoundEvent, error) {
	if r.Status != UndefinedStatus {
		return nil, ErrRoundAlreadyActive.Withf("round %d", r.Id)
	}
	if duration < MinRoundDuration || duration > MaxRoundDuration {
		return nil, ErrInvalidTimeParameters.Withf(
			"duration %ds not in [%d, %d]", duration, MinRoundDuration, MaxRoundDuration,
		)
	}
	if commitment.IsZero() {
		return nil, ErrInvalidSeedCommitment
	}

	event := RoundStarted{
		Id:         r.Id,
		Commitment: commitment,
		StartTime:  now,
		EndTime:    now + duration,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) PlaceBet(player string, amount uint64, now int64) ([]RoundEvent, error) {
	if r.Status != ActiveStatus {
		return nil, ErrRoundNotActive.Withf("round %d is %s", r.Id, r.Status)
	}
	if now >= r.EndTime {
		return nil, ErrBetWindowClosed.Withf("round %d ended at %d", r.Id, r.EndTime)
	}
	if amount < MinBet || amount > MaxBet {
		return nil, ErrInvalidBetAmount.Withf("%d not in [%d, %d]", amount, MinBet, MaxBet)
	}

	if bet, _ := r.BetOf(player); bet != nil {
		if _, ok := addUint64(bet.Amount, amount); !ok {
			return nil, ErrCalculationError
		}
	} else if r.PlayerCount() >= MaxPlayers {
		return nil, ErrMaxPlayersReached
	}
	if _, ok := addUint64(r.TotalPot, amount); !ok {
		return nil, ErrCalculationError
	}

	event := BetPlaced{
		Id:        r.Id,
		Player:    player,
		Amount:    amount,
		Timestamp: now,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

// Finalize checks the reveal, selects the winner and computes the house fee.
//
// NOTE: the commitment is NOT hiding. The reveal must equal the stored
// commitment byte for byte, so anyone reading Commitment (returned by
// GET /v1/rounds/:id) can compute the winner before betting closes.
func (r *Round) Finalize(
	reveal Seed, now int64, feeBps uint16, houseWallet string,
) ([]RoundEvent, error) {
	if r.Status != ActiveStatus {
		return nil, ErrRoundNotActive.Withf("round %d is %s", r.Id, r.Status)
	}
	if now < r.EndTime {
		return nil, ErrRoundNotEnded.Withf("round %d ends at %d", r.Id, r.EndTime)
	}
	if r.PlayerCount() <= 0 {
		return nil, ErrNoPlayers
	}
	if reveal != r.Commitment {
		return nil, ErrInvalidRevealedSeed
	}

	winnerIndex, err := SelectWinner(
		reveal, now, r.TotalPot, uint8(r.PlayerCount()), r.Id, r.Bets,
	)
	if err != nil {
		return nil, err
	}

	fee, err := houseFee(r.TotalPot, feeBps)
	if err != nil {
		return nil, err
	}
	winnerAmount, ok := subUint64(r.TotalPot, fee)
	if !ok {
		return nil, ErrCalculationError
	}

	events := []RoundEvent{
		WinnerDetermined{
			Id:           r.Id,
			RevealedSeed: reveal,
			WinnerIndex:  winnerIndex,
			Winner:       r.Bets[winnerIndex].Player,
			Timestamp:    now,
		},
		FeeSettled{
			Id:           r.Id,
			HouseWallet:  houseWallet,
			HouseFee:     fee,
			WinnerAmount: winnerAmount,
		},
	}
	for _, event := range events {
		r.raise(event)
	}

	return events, nil
}

// ClaimWinnings pays the winner at most available, the pot balance that can
// be moved without breaking its reserve.
func (r *Round) ClaimWinnings(caller string, available uint64) ([]RoundEvent, error) {
	if !r.IsSettlementReady() {
		return nil, ErrWinnerNotDetermined.Withf("round %d is %s", r.Id, r.Status)
	}
	if len(caller) <= 0 || caller != r.Winner {
		return nil, ErrUnauthorizedAccess.Withf("caller is not the winner of round %d", r.Id)
	}
	if r.WinnerClaimed {
		return nil, ErrWinningsAlreadyClaimed
	}

	amount := r.WinnerAmount
	if available < amount {
		amount = available
	}

	event := WinningsClaimed{
		Id:     r.Id,
		Winner: caller,
		Amount: amount,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) CreateRewardPot(tokenAccount string, now int64) ([]RoundEvent, error) {
	if err := r.ExpectStatus(FeeSettledStatus); err != nil {
		return nil, err
	}
	if len(tokenAccount) <= 0 {
		return nil, ErrMissingRewardPotAccount
	}

	event := RewardPotCreated{
		Id:           r.Id,
		TokenAccount: tokenAccount,
		Timestamp:    now,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) MintRewards(amount uint64) ([]RoundEvent, error) {
	if err := r.ExpectStatus(RewardPotCreatedStatus); err != nil {
		return nil, err
	}

	event := RewardTokensMinted{
		Id:     r.Id,
		Amount: amount,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) CalculateEntitlements() ([]RoundEvent, error) {
	if err := r.ExpectStatus(TokensMintedStatus); err != nil {
		return nil, err
	}

	entitlements, err := ComputeEntitlements(r.Bets, r.TotalPot, r.TotalRewardMinted)
	if err != nil {
		return nil, err
	}

	event := EntitlementsCalculated{
		Id:           r.Id,
		Entitlements: entitlements,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) ClaimReward(caller string) ([]RoundEvent, error) {
	if r.Status < TokensMintedStatus {
		return nil, wrongState(TokensMintedStatus, r.Status)
	}
	entitlement, _ := r.EntitlementOf(caller)
	if len(caller) <= 0 || entitlement == nil {
		return nil, ErrNotEligibleForReward
	}
	if entitlement.Claimed {
		return nil, ErrRewardAlreadyClaimed
	}

	event := RewardClaimed{
		Id:     r.Id,
		Player: caller,
		Amount: entitlement.Reward,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

// ComputeEntitlements splits minted reward tokens across bets pro rata to
// their stake. A zero pot yields zero rewards for everyone.
func ComputeEntitlements(bets []Bet, totalPot, minted uint64) ([]Entitlement, error) {
	entitlements := make([]Entitlement, 0, len(bets))
	for _, bet := range bets {
		entitlement := Entitlement{Player: bet.Player, Stake: bet.Amount}
		if totalPot > 0 && bet.Amount > 0 {
			reward, ok := mulDiv(bet.Amount, minted, totalPot)
			if !ok {
				return nil, ErrCalculationError
			}
			entitlement.Reward = reward
		}
		entitlements = append(entitlements, entitlement)
	}
	return entitlements, nil
}

func (r *Round) raise(event RoundEvent) {
	if r.changes == nil {
		r.changes = make([]RoundEvent, 0)
	}
	r.changes = append(r.changes, event)
	r.On(event, false)
}
