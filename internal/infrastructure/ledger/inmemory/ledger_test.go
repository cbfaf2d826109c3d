package inmemoryledger_test

import (
	"context"
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/core/ports"
	inmemoryledger "github.com/spinwheel-network/spinwheel/internal/infrastructure/ledger/inmemory"
	"github.com/stretchr/testify/require"
)

func TestValueLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("open account funds reserve", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Airdrop(ctx, "wallet:alice", 1000))

		require.NoError(t, ledger.OpenAccount(ctx, "escrow:alice", 100, "wallet:alice"))
		balance, err := ledger.Balance(ctx, "wallet:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(900), balance)

		balance, err = ledger.Balance(ctx, "escrow:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(100), balance)
		available, err := ledger.Available(ctx, "escrow:alice")
		require.NoError(t, err)
		require.Zero(t, available)

		err = ledger.OpenAccount(ctx, "escrow:alice", 100, "wallet:alice")
		require.ErrorIs(t, err, ports.ErrAccountExists)

		err = ledger.OpenAccount(ctx, "escrow:bob", 100, "wallet:bob")
		require.ErrorIs(t, err, ports.ErrAccountNotFound)

		err = ledger.OpenAccount(ctx, "escrow:carol", 10_000, "wallet:alice")
		require.ErrorIs(t, err, ports.ErrInsufficientBalance)

		require.NoError(t, ledger.OpenAccount(ctx, "pot:1", 0, ""))
		ok, err := ledger.HasAccount(ctx, "pot:1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("close account refunds the beneficiary", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Airdrop(ctx, "wallet:alice", 1000))
		require.NoError(t, ledger.OpenAccount(ctx, "escrow:alice", 100, "wallet:alice"))
		require.NoError(t, ledger.Transfer(ctx,
			ports.Transfer{From: "wallet:alice", To: "escrow:alice", Amount: 50},
		))

		require.NoError(t, ledger.CloseAccount(ctx, "escrow:alice", "wallet:alice"))
		ok, err := ledger.HasAccount(ctx, "escrow:alice")
		require.NoError(t, err)
		require.False(t, ok)
		balance, err := ledger.Balance(ctx, "wallet:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(1000), balance)

		err = ledger.CloseAccount(ctx, "escrow:alice", "wallet:alice")
		require.ErrorIs(t, err, ports.ErrAccountNotFound)

		require.NoError(t, ledger.OpenAccount(ctx, "escrow:bob", 100, "wallet:alice"))
		require.Error(t, ledger.CloseAccount(ctx, "escrow:bob", ""))
		ok, err = ledger.HasAccount(ctx, "escrow:bob")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("transfers are all or nothing", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Airdrop(ctx, "wallet:alice", 1000))
		require.NoError(t, ledger.OpenAccount(ctx, "escrow:alice", 100, "wallet:alice"))

		err := ledger.Transfer(ctx,
			ports.Transfer{From: "wallet:alice", To: "escrow:alice", Amount: 500},
			ports.Transfer{From: "escrow:alice", To: "house", Amount: 550},
		)
		require.ErrorIs(t, err, ports.ErrBelowReserve)

		balance, err := ledger.Balance(ctx, "escrow:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(100), balance)
		balance, err = ledger.Balance(ctx, "wallet:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(900), balance)
		ok, err := ledger.HasAccount(ctx, "house")
		require.NoError(t, err)
		require.False(t, ok)

		err = ledger.Transfer(ctx,
			ports.Transfer{From: "wallet:alice", To: "escrow:alice", Amount: 500},
			ports.Transfer{From: "escrow:alice", To: "house", Amount: 500},
		)
		require.NoError(t, err)
		balance, err = ledger.Balance(ctx, "house")
		require.NoError(t, err)
		require.Equal(t, uint64(500), balance)
		balance, err = ledger.Balance(ctx, "escrow:alice")
		require.NoError(t, err)
		require.Equal(t, uint64(100), balance)

		err = ledger.Transfer(ctx, ports.Transfer{From: "wallet:alice", To: "x", Amount: 401})
		require.ErrorIs(t, err, ports.ErrInsufficientBalance)

		err = ledger.Transfer(ctx, ports.Transfer{From: "nobody", To: "x", Amount: 1})
		require.ErrorIs(t, err, ports.ErrAccountNotFound)
	})
}

func TestTokenLedger(t *testing.T) {
	ctx := context.Background()
	mint := "reward-mint"

	ledger := inmemoryledger.NewTokenLedger()
	require.NoError(t, ledger.CreateMint(ctx, mint, "mint-authority", 6))
	require.ErrorIs(t, ledger.CreateMint(ctx, mint, "mint-authority", 6), ports.ErrAccountExists)

	pot, err := ledger.CreateAccount(ctx, mint, "reward-pot:1")
	require.NoError(t, err)

	err = ledger.MintTo(ctx, mint, pot, 1_000_000, "someone")
	require.ErrorIs(t, err, ports.ErrUnauthorizedSigner)
	require.NoError(t, ledger.MintTo(ctx, mint, pot, 1_000_000, "mint-authority"))

	alice, err := ledger.GetOrCreateAccount(ctx, mint, "alice")
	require.NoError(t, err)
	again, err := ledger.GetOrCreateAccount(ctx, mint, "alice")
	require.NoError(t, err)
	require.Equal(t, alice, again)

	_, err = ledger.Transfer(ctx, mint, pot, alice, 10, "alice")
	require.ErrorIs(t, err, ports.ErrUnauthorizedSigner)
	_, err = ledger.Transfer(ctx, mint, pot, alice, 2_000_000, "reward-pot:1")
	require.ErrorIs(t, err, ports.ErrInsufficientBalance)

	received, err := ledger.Transfer(ctx, mint, pot, alice, 400_000, "reward-pot:1")
	require.NoError(t, err)
	require.Equal(t, uint64(400_000), received)

	t.Run("transfer fee", func(t *testing.T) {
		fee := ports.TransferFeeConfig{FeeBps: 100, MaxFee: 1_000}
		require.ErrorIs(t, ledger.SetTransferFee(ctx, mint, fee, "alice"), ports.ErrUnauthorizedSigner)
		require.NoError(t, ledger.SetTransferFee(ctx, mint, fee, "mint-authority"))

		got, err := ledger.GetTransferFee(ctx, mint)
		require.NoError(t, err)
		require.Equal(t, fee, got)

		bob, err := ledger.GetOrCreateAccount(ctx, mint, "bob")
		require.NoError(t, err)

		received, err := ledger.Transfer(ctx, mint, pot, bob, 50_000, "reward-pot:1")
		require.NoError(t, err)
		require.Equal(t, uint64(49_500), received)

		received, err = ledger.Transfer(ctx, mint, pot, bob, 500_000, "reward-pot:1")
		require.NoError(t, err)
		require.Equal(t, uint64(499_000), received)

		balance, err := ledger.Balance(ctx, pot)
		require.NoError(t, err)
		require.Equal(t, uint64(50_000), balance)
		balance, err = ledger.Balance(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(548_500), balance)
	})
}
