package domain_test

import (
	"math"
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestEscrowAccount(t *testing.T) {
	t.Run("deposit", func(t *testing.T) {
		escrow := domain.NewEscrowAccount(alice, now)
		require.Zero(t, escrow.Balance)

		require.NoError(t, escrow.Deposit(alice, 500, now+1))
		require.NoError(t, escrow.Deposit(alice, 250, now+2))
		require.Equal(t, uint64(750), escrow.Balance)
		require.Equal(t, now+2, escrow.UpdatedAt)

		require.ErrorIs(t, escrow.Deposit(alice, 0, now), domain.ErrInvalidDepositAmount)
		require.ErrorIs(t, escrow.Deposit(bob, 10, now), domain.ErrUnauthorizedAccess)

		escrow.Balance = math.MaxUint64
		require.ErrorIs(t, escrow.Deposit(alice, 1, now), domain.ErrCalculationError)
		require.Equal(t, uint64(math.MaxUint64), escrow.Balance)
	})

	t.Run("withdraw", func(t *testing.T) {
		fixtures := []struct {
			name          string
			balance       uint64
			amount        uint64
			caller        string
			expectedDebit uint64
			expectedErr   error
		}{
			{"valid", 100_000_000, 50_000_000, alice, 60_000_000, nil},
			{"exact balance", 60_000_000, 50_000_000, alice, 60_000_000, nil},
			{"fee not covered", 55_000_000, 50_000_000, alice, 0, domain.ErrInsufficientPlatformBalance},
			{"zero", 100_000_000, 0, alice, 0, domain.ErrInvalidWithdrawalAmount},
			{"overflow", math.MaxUint64, math.MaxUint64, alice, 0, domain.ErrCalculationError},
			{"not owner", 100_000_000, 50_000_000, bob, 0, domain.ErrUnauthorizedAccess},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				escrow := domain.NewEscrowAccount(alice, now)
				escrow.Balance = f.balance

				debit, err := escrow.Withdraw(f.caller, f.amount, now+1)
				if f.expectedErr != nil {
					require.ErrorIs(t, err, f.expectedErr)
					require.Equal(t, f.balance, escrow.Balance)
					return
				}
				require.NoError(t, err)
				require.Equal(t, f.expectedDebit, debit)
				require.Equal(t, f.balance-f.expectedDebit, escrow.Balance)
			})
		}
	})

	t.Run("bets and winnings", func(t *testing.T) {
		escrow := domain.NewEscrowAccount(alice, now)
		escrow.Balance = domain.MinBet

		require.NoError(t, escrow.DebitForBet(alice, domain.MinBet, now))
		require.Zero(t, escrow.Balance)
		require.ErrorIs(t, escrow.DebitForBet(alice, 1, now), domain.ErrInsufficientPlatformBalance)

		require.NoError(t, escrow.CreditWinnings(42, now))
		require.Equal(t, uint64(42), escrow.Balance)
	})
}

func TestGameConfig(t *testing.T) {
	t.Run("new", func(t *testing.T) {
		game, err := domain.NewGameConfig("authority", house, "mint", domain.DefaultHouseFee, now)
		require.NoError(t, err)
		require.Zero(t, game.RoundCounter)

		_, err = domain.NewGameConfig("authority", house, "mint", 501, now)
		require.ErrorIs(t, err, domain.ErrInvalidHouseFeeConfig)

		_, err = domain.NewGameConfig("authority", "", "mint", 10, now)
		require.ErrorIs(t, err, domain.ErrInvalidHouseWallet)
	})

	t.Run("updates", func(t *testing.T) {
		game, err := domain.NewGameConfig("authority", house, "mint", 10, now)
		require.NoError(t, err)

		require.NoError(t, game.UpdateFee("authority", 500, now))
		require.Equal(t, uint16(500), game.FeeBps)
		require.ErrorIs(t, game.UpdateFee("authority", 501, now), domain.ErrInvalidHouseFeeConfig)
		require.ErrorIs(t, game.UpdateFee(alice, 1, now), domain.ErrUnauthorizedAccess)
		require.Equal(t, uint16(500), game.FeeBps)

		require.NoError(t, game.UpdateHouseWallet("authority", "vault", now))
		require.Equal(t, "vault", game.HouseWallet)
		require.ErrorIs(t, game.UpdateHouseWallet(alice, "mine", now), domain.ErrUnauthorizedAccess)
		require.ErrorIs(t, game.UpdateHouseWallet("authority", "", now), domain.ErrInvalidHouseWallet)
	})

	t.Run("round counter", func(t *testing.T) {
		game, err := domain.NewGameConfig("authority", house, "mint", 10, now)
		require.NoError(t, err)

		_, err = game.NextRoundId("authority", 1)
		require.ErrorIs(t, err, domain.ErrInvalidRoundIdForSeed)
		_, err = game.NextRoundId(alice, 0)
		require.ErrorIs(t, err, domain.ErrUnauthorizedAccess)

		id, err := game.NextRoundId("authority", 0)
		require.NoError(t, err)
		require.Equal(t, uint64(1), id)
		require.Zero(t, game.RoundCounter)

		game.CommitRound(id, now)
		require.Equal(t, uint64(1), game.RoundCounter)

		_, err = game.NextRoundId("authority", 0)
		require.ErrorIs(t, err, domain.ErrInvalidRoundIdForSeed)
		id, err = game.NextRoundId("authority", 1)
		require.NoError(t, err)
		require.Equal(t, uint64(2), id)
	})

	t.Run("house fee", func(t *testing.T) {
		game, err := domain.NewGameConfig("authority", house, "mint", 300, now)
		require.NoError(t, err)

		fee, err := game.HouseFee(1_000_000_000)
		require.NoError(t, err)
		require.Equal(t, uint64(30_000_000), fee)

		fee, err = game.HouseFee(33)
		require.NoError(t, err)
		require.Zero(t, fee)

		_, err = game.HouseFee(math.MaxUint64)
		require.ErrorIs(t, err, domain.ErrCalculationError)
	})
}

func TestSeed(t *testing.T) {
	seed, err := domain.NewRandomSeed()
	require.NoError(t, err)
	require.False(t, seed.IsZero())

	parsed, err := domain.SeedFromHex(seed.String())
	require.NoError(t, err)
	require.Equal(t, seed, parsed)

	_, err = domain.SeedFromHex("abcd")
	require.Error(t, err)
	_, err = domain.SeedFromHex("zz")
	require.Error(t, err)
}

func TestRoundStatus(t *testing.T) {
	for s := domain.ActiveStatus; s <= domain.RewardsProcessedStatus; s++ {
		parsed, err := domain.ParseRoundStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := domain.ParseRoundStatus("SPINNING")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
