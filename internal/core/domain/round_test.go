package domain_test

import (
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
	house = "house"
	now   = int64(1_700_000_000)
)

var commitment = domain.Seed{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
	0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
}

func TestRound(t *testing.T) {
	testStartRound(t)
	testPlaceBet(t)
	testFinalizeRound(t)
	testClaimWinnings(t)
	testRewardPipeline(t)
	testClaimReward(t)
	testReplay(t)
}

func testStartRound(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := domain.NewRound(1)
			events, err := round.Start(commitment, now, 60)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.True(t, round.IsActive())
			require.Equal(t, now, round.StartTime)
			require.Equal(t, now+60, round.EndTime)
			require.Equal(t, commitment, round.Commitment)
			require.Nil(t, round.RevealedSeed)
			require.Nil(t, round.WinnerIndex)

			event, ok := events[0].(domain.RoundStarted)
			require.True(t, ok)
			require.Equal(t, uint64(1), event.Id)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				name        string
				duration    int64
				commitment  domain.Seed
				started     bool
				expectedErr error
			}{
				{"too short", 0, commitment, false, domain.ErrInvalidTimeParameters},
				{"too long", 301, commitment, false, domain.ErrInvalidTimeParameters},
				{"negative", -5, commitment, false, domain.ErrInvalidTimeParameters},
				{"zero commitment", 60, domain.Seed{}, false, domain.ErrInvalidSeedCommitment},
				{"already started", 60, commitment, true, domain.ErrRoundAlreadyActive},
			}

			for _, f := range fixtures {
				t.Run(f.name, func(t *testing.T) {
					round := domain.NewRound(1)
					if f.started {
						_, err := round.Start(commitment, now, 60)
						require.NoError(t, err)
					}
					events, err := round.Start(f.commitment, now, f.duration)
					require.ErrorIs(t, err, f.expectedErr)
					require.Empty(t, events)
				})
			}
		})

		t.Run("bounds are inclusive", func(t *testing.T) {
			for _, d := range []int64{domain.MinRoundDuration, domain.MaxRoundDuration} {
				round := domain.NewRound(1)
				_, err := round.Start(commitment, now, d)
				require.NoError(t, err)
			}
		})
	})
}

func testPlaceBet(t *testing.T) {
	t.Run("place bet", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := startedRound(t, 60)

			_, err := round.PlaceBet(alice, domain.MinBet, now+1)
			require.NoError(t, err)
			_, err = round.PlaceBet(bob, domain.MaxBet, now+2)
			require.NoError(t, err)
			events, err := round.PlaceBet(alice, 5*domain.MinBet, now+3)
			require.NoError(t, err)
			require.Len(t, events, 1)

			require.Equal(t, 2, round.PlayerCount())
			require.Equal(t, 6*domain.MinBet, round.Bets[0].Amount)
			require.Equal(t, domain.MaxBet, round.Bets[1].Amount)
			require.Equal(t, 6*domain.MinBet+domain.MaxBet, round.TotalPot)
			requirePotMatchesBets(t, round)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				name        string
				amount      uint64
				at          int64
				expectedErr error
			}{
				{"below min", domain.MinBet - 1, now + 1, domain.ErrInvalidBetAmount},
				{"above max", domain.MaxBet + 1, now + 1, domain.ErrInvalidBetAmount},
				{"zero", 0, now + 1, domain.ErrInvalidBetAmount},
				{"at end time", domain.MinBet, now + 60, domain.ErrBetWindowClosed},
				{"after end time", domain.MinBet, now + 120, domain.ErrBetWindowClosed},
			}

			for _, f := range fixtures {
				t.Run(f.name, func(t *testing.T) {
					round := startedRound(t, 60)
					events, err := round.PlaceBet(alice, f.amount, f.at)
					require.ErrorIs(t, err, f.expectedErr)
					require.Empty(t, events)
					require.Zero(t, round.TotalPot)
					require.Zero(t, round.PlayerCount())
				})
			}
		})

		t.Run("not active", func(t *testing.T) {
			round := domain.NewRound(1)
			_, err := round.PlaceBet(alice, domain.MinBet, now)
			require.ErrorIs(t, err, domain.ErrRoundNotActive)

			round = settledRound(t)
			_, err = round.PlaceBet(alice, domain.MinBet, now+1)
			require.ErrorIs(t, err, domain.ErrRoundNotActive)
		})

		t.Run("max players", func(t *testing.T) {
			round := startedRound(t, 60)
			players := make([]string, 0, domain.MaxPlayers)
			for i := 0; i < domain.MaxPlayers; i++ {
				player := string(rune('a' + i))
				players = append(players, player)
				_, err := round.PlaceBet(player, domain.MinBet, now+1)
				require.NoError(t, err)
			}

			_, err := round.PlaceBet("latecomer", domain.MinBet, now+1)
			require.ErrorIs(t, err, domain.ErrMaxPlayersReached)

			// existing players can still top up
			_, err = round.PlaceBet(players[3], domain.MinBet, now+2)
			require.NoError(t, err)
			require.Equal(t, domain.MaxPlayers, round.PlayerCount())
			require.Equal(t, 2*domain.MinBet, round.Bets[3].Amount)
			requirePotMatchesBets(t, round)
		})
	})
}

func testFinalizeRound(t *testing.T) {
	t.Run("finalize", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := startedRound(t, 60)
			_, err := round.PlaceBet(alice, 300_000_000, now+1)
			require.NoError(t, err)
			_, err = round.PlaceBet(bob, 700_000_000, now+2)
			require.NoError(t, err)

			events, err := round.Finalize(commitment, now+60, 300, house)
			require.NoError(t, err)
			require.Len(t, events, 2)
			require.Equal(t, domain.EventTypeWinnerDetermined, events[0].GetType())
			require.Equal(t, domain.EventTypeFeeSettled, events[1].GetType())

			require.Equal(t, domain.FeeSettledStatus, round.Status)
			require.True(t, round.IsSettlementReady())
			require.Equal(t, uint64(30_000_000), round.HouseFee)
			require.Equal(t, uint64(970_000_000), round.WinnerAmount)
			require.Equal(t, round.TotalPot, round.HouseFee+round.WinnerAmount)
			require.NotNil(t, round.RevealedSeed)
			require.Equal(t, commitment, *round.RevealedSeed)
			require.NotNil(t, round.WinnerIndex)
			require.Less(t, *round.WinnerIndex, round.PlayerCount())
			require.Equal(t, round.Bets[*round.WinnerIndex].Player, round.Winner)
		})

		t.Run("invalid", func(t *testing.T) {
			wrongSeed := commitment
			wrongSeed[31] ^= 0xff

			fixtures := []struct {
				name        string
				withBets    bool
				reveal      domain.Seed
				at          int64
				expectedErr error
			}{
				{"not ended", true, commitment, now + 59, domain.ErrRoundNotEnded},
				{"no players", false, commitment, now + 60, domain.ErrNoPlayers},
				{"bad reveal", true, wrongSeed, now + 60, domain.ErrInvalidRevealedSeed},
			}

			for _, f := range fixtures {
				t.Run(f.name, func(t *testing.T) {
					round := startedRound(t, 60)
					if f.withBets {
						_, err := round.PlaceBet(alice, domain.MinBet, now+1)
						require.NoError(t, err)
					}
					events, err := round.Finalize(f.reveal, f.at, 10, house)
					require.ErrorIs(t, err, f.expectedErr)
					require.Empty(t, events)
					require.Equal(t, domain.ActiveStatus, round.Status)
					require.Nil(t, round.RevealedSeed)
					require.Empty(t, round.Winner)
				})
			}
		})

		t.Run("twice", func(t *testing.T) {
			round := settledRound(t)
			_, err := round.Finalize(commitment, now+60, 10, house)
			require.ErrorIs(t, err, domain.ErrRoundNotActive)
		})

		t.Run("fee never loses units", func(t *testing.T) {
			for _, bps := range []uint16{0, 1, 7, 10, 333, 500} {
				round := startedRound(t, 60)
				_, err := round.PlaceBet(alice, 123_456_789, now+1)
				require.NoError(t, err)
				_, err = round.PlaceBet(bob, 987_654_321, now+1)
				require.NoError(t, err)

				_, err = round.Finalize(commitment, now+61, bps, house)
				require.NoError(t, err)
				require.Equal(t, round.TotalPot, round.HouseFee+round.WinnerAmount)
				require.Equal(t, round.TotalPot*uint64(bps)/10_000, round.HouseFee)
			}
		})
	})
}

func testClaimWinnings(t *testing.T) {
	t.Run("claim winnings", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := settledRound(t)
			events, err := round.ClaimWinnings(round.Winner, round.TotalPot)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.True(t, round.WinnerClaimed)
			require.Equal(t, round.WinnerAmount, round.WinningsPaid)
			require.Equal(t, domain.FeeSettledStatus, round.Status)

			_, err = round.ClaimWinnings(round.Winner, round.TotalPot)
			require.ErrorIs(t, err, domain.ErrWinningsAlreadyClaimed)
		})

		t.Run("clamped to available", func(t *testing.T) {
			round := settledRound(t)
			events, err := round.ClaimWinnings(round.Winner, 1000)
			require.NoError(t, err)
			require.Equal(t, uint64(1000), events[0].(domain.WinningsClaimed).Amount)

			round = settledRound(t)
			events, err = round.ClaimWinnings(round.Winner, 0)
			require.NoError(t, err)
			require.Zero(t, events[0].(domain.WinningsClaimed).Amount)
			require.True(t, round.WinnerClaimed)
		})

		t.Run("invalid", func(t *testing.T) {
			round := startedRound(t, 60)
			_, err := round.ClaimWinnings(alice, 0)
			require.ErrorIs(t, err, domain.ErrWinnerNotDetermined)

			round = settledRound(t)
			loser := alice
			if round.Winner == alice {
				loser = bob
			}
			_, err = round.ClaimWinnings(loser, round.TotalPot)
			require.ErrorIs(t, err, domain.ErrUnauthorizedAccess)
			require.False(t, round.WinnerClaimed)
		})
	})
}

func testRewardPipeline(t *testing.T) {
	t.Run("reward pipeline", func(t *testing.T) {
		t.Run("in order", func(t *testing.T) {
			round := startedRound(t, 60)
			_, err := round.PlaceBet(alice, 400_000_000, now+1)
			require.NoError(t, err)
			_, err = round.PlaceBet(bob, 600_000_000, now+1)
			require.NoError(t, err)
			_, err = round.Finalize(commitment, now+60, 10, house)
			require.NoError(t, err)

			_, err = round.CreateRewardPot("token-account", now+61)
			require.NoError(t, err)
			require.Equal(t, domain.RewardPotCreatedStatus, round.Status)
			require.Equal(t, "token-account", round.RewardPot)

			_, err = round.MintRewards(domain.RewardPerRound)
			require.NoError(t, err)
			require.Equal(t, domain.TokensMintedStatus, round.Status)
			require.Equal(t, domain.RewardPerRound, round.TotalRewardMinted)

			_, err = round.CalculateEntitlements()
			require.NoError(t, err)
			require.Equal(t, domain.RewardsProcessedStatus, round.Status)
			require.Len(t, round.Entitlements, 2)
			require.Equal(t, uint64(400_000), round.Entitlements[0].Reward)
			require.Equal(t, uint64(600_000), round.Entitlements[1].Reward)
			require.Equal(t, domain.RewardPerRound, round.Entitlements[0].Reward+round.Entitlements[1].Reward)
		})

		t.Run("out of order", func(t *testing.T) {
			round := settledRound(t)

			_, err := round.MintRewards(domain.RewardPerRound)
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)
			_, err = round.CalculateEntitlements()
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)

			_, err = round.CreateRewardPot("token-account", now+61)
			require.NoError(t, err)
			_, err = round.CreateRewardPot("token-account", now+61)
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)
			_, err = round.CalculateEntitlements()
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)

			_, err = round.MintRewards(domain.RewardPerRound)
			require.NoError(t, err)
			_, err = round.MintRewards(domain.RewardPerRound)
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)

			active := startedRound(t, 60)
			_, err = active.CreateRewardPot("token-account", now)
			require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)
		})

		t.Run("missing token account", func(t *testing.T) {
			round := settledRound(t)

			_, err := round.CreateRewardPot("", now+61)
			require.ErrorIs(t, err, domain.ErrMissingRewardPotAccount)
			require.Equal(t, domain.FeeSettledStatus, round.Status)
			require.Empty(t, round.RewardPot)
		})
	})
}

func testClaimReward(t *testing.T) {
	t.Run("claim reward", func(t *testing.T) {
		round := processedRound(t)

		events, err := round.ClaimReward(alice)
		require.NoError(t, err)
		require.Equal(t, uint64(400_000), events[0].(domain.RewardClaimed).Amount)
		entitlement, _ := round.EntitlementOf(alice)
		require.True(t, entitlement.Claimed)

		_, err = round.ClaimReward(alice)
		require.ErrorIs(t, err, domain.ErrRewardAlreadyClaimed)

		_, err = round.ClaimReward(carol)
		require.ErrorIs(t, err, domain.ErrNotEligibleForReward)

		_, err = round.ClaimReward(bob)
		require.NoError(t, err)

		_, err = round.ClaimWinnings(round.Winner, round.TotalPot)
		require.NoError(t, err)
		require.True(t, round.IsClosed())
	})

	t.Run("claim reward before minting", func(t *testing.T) {
		round := settledRound(t)
		_, err := round.ClaimReward(alice)
		require.ErrorIs(t, err, domain.ErrRoundNotInCorrectState)
	})

	t.Run("claim reward before entitlements", func(t *testing.T) {
		round := settledRound(t)
		_, err := round.CreateRewardPot("token-account", now+61)
		require.NoError(t, err)
		_, err = round.MintRewards(domain.RewardPerRound)
		require.NoError(t, err)

		_, err = round.ClaimReward(alice)
		require.ErrorIs(t, err, domain.ErrNotEligibleForReward)
	})
}

func testReplay(t *testing.T) {
	t.Run("replay", func(t *testing.T) {
		round := processedRound(t)
		_, err := round.ClaimReward(bob)
		require.NoError(t, err)

		replayed := domain.NewRoundFromEvents(round.Events())
		require.Equal(t, uint(len(round.Events())), replayed.Version)
		require.Equal(t, round.Id, replayed.Id)
		require.Equal(t, round.Status, replayed.Status)
		require.Equal(t, round.Bets, replayed.Bets)
		require.Equal(t, round.TotalPot, replayed.TotalPot)
		require.Equal(t, round.Winner, replayed.Winner)
		require.Equal(t, *round.WinnerIndex, *replayed.WinnerIndex)
		require.Equal(t, round.HouseFee, replayed.HouseFee)
		require.Equal(t, round.Entitlements, replayed.Entitlements)
	})
}

func TestComputeEntitlements(t *testing.T) {
	fixtures := []struct {
		name     string
		bets     []domain.Bet
		pot      uint64
		minted   uint64
		expected []uint64
	}{
		{
			name:     "pro rata",
			bets:     []domain.Bet{{alice, 400_000_000}, {bob, 600_000_000}},
			pot:      1_000_000_000,
			minted:   1_000_000,
			expected: []uint64{400_000, 600_000},
		},
		{
			name:     "rounds down",
			bets:     []domain.Bet{{alice, 1}, {bob, 1}, {carol, 1}},
			pot:      3,
			minted:   100,
			expected: []uint64{33, 33, 33},
		},
		{
			name:     "zero pot",
			bets:     []domain.Bet{{alice, 0}},
			pot:      0,
			minted:   1_000_000,
			expected: []uint64{0},
		},
		{
			name:     "zero stake",
			bets:     []domain.Bet{{alice, 0}, {bob, 10}},
			pot:      10,
			minted:   1_000_000,
			expected: []uint64{0, 1_000_000},
		},
		{
			name:     "wide product",
			bets:     []domain.Bet{{alice, 10_000_000_000}, {bob, 10_000_000_000}},
			pot:      20_000_000_000,
			minted:   1 << 62,
			expected: []uint64{1 << 61, 1 << 61},
		},
		{
			name:     "no bets",
			bets:     nil,
			pot:      0,
			minted:   1_000_000,
			expected: []uint64{},
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			entitlements, err := domain.ComputeEntitlements(f.bets, f.pot, f.minted)
			require.NoError(t, err)
			require.Len(t, entitlements, len(f.expected))

			total := uint64(0)
			for i, e := range entitlements {
				require.Equal(t, f.expected[i], e.Reward)
				require.False(t, e.Claimed)
				total += e.Reward
			}
			require.LessOrEqual(t, total, f.minted)
		})
	}
}

func startedRound(t *testing.T, duration int64) *domain.Round {
	round := domain.NewRound(1)
	_, err := round.Start(commitment, now, duration)
	require.NoError(t, err)
	return round
}

func settledRound(t *testing.T) *domain.Round {
	round := startedRound(t, 60)
	_, err := round.PlaceBet(alice, 400_000_000, now+1)
	require.NoError(t, err)
	_, err = round.PlaceBet(bob, 600_000_000, now+1)
	require.NoError(t, err)
	_, err = round.Finalize(commitment, now+60, 10, house)
	require.NoError(t, err)
	return round
}

func processedRound(t *testing.T) *domain.Round {
	round := settledRound(t)
	_, err := round.CreateRewardPot("token-account", now+61)
	require.NoError(t, err)
	_, err = round.MintRewards(domain.RewardPerRound)
	require.NoError(t, err)
	_, err = round.CalculateEntitlements()
	require.NoError(t, err)
	return round
}

func requirePotMatchesBets(t *testing.T, round *domain.Round) {
	total := uint64(0)
	for _, bet := range round.Bets {
		total += bet.Amount
	}
	require.Equal(t, round.TotalPot, total)
}
