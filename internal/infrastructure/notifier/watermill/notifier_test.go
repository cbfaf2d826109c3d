package watermillnotifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	watermillnotifier "github.com/spinwheel-network/spinwheel/internal/infrastructure/notifier/watermill"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	notifier := watermillnotifier.NewNotifier()
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := notifier.Subscribe(ctx)
	require.NoError(t, err)

	events := []domain.RoundEvent{
		domain.RoundStarted{Id: 1, StartTime: 10, EndTime: 70, Commitment: domain.Seed{1}},
		domain.BetPlaced{Id: 1, Player: "alice", Amount: domain.MinBet, Timestamp: 11},
		domain.EntitlementsCalculated{Id: 1, Entitlements: []domain.Entitlement{
			{Player: "alice", Stake: domain.MinBet, Reward: domain.RewardPerRound},
		}},
	}
	require.NoError(t, notifier.Notify(context.Background(), events...))

	for _, expected := range events {
		select {
		case got := <-ch:
			require.Equal(t, expected, got)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
}
