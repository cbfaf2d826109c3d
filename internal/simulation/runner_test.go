package simulation_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/spinwheel-network/spinwheel/internal/config"
	httpservice "github.com/spinwheel-network/spinwheel/internal/interface/http"
	"github.com/spinwheel-network/spinwheel/internal/simulation"
	"github.com/stretchr/testify/require"
)

func TestRunner(t *testing.T) {
	url := startDaemon(t)

	scenario, err := simulation.ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := simulation.NewRestClient(url)
	report, err := simulation.NewRunner(client).Run(ctx, scenario)
	require.NoError(t, err)
	require.Len(t, report.Rounds, 2)

	first := report.Rounds[0]
	require.Equal(t, uint64(1), first.RoundId)
	require.Equal(t, uint64(1_000_000_000), first.TotalPot)
	require.Equal(t, uint64(30_000_000), first.HouseFee)
	require.Equal(t, uint64(970_000_000), first.WinnerAmount)
	require.Equal(t, first.WinnerAmount, first.Claimed)
	require.Contains(t, []string{"alice", "bob"}, first.Winner)
	require.Equal(t, map[string]uint64{
		"alice": 400_000,
		"bob":   600_000,
	}, first.Rewards)

	second := report.Rounds[1]
	require.Equal(t, uint64(2), second.RoundId)
	require.Equal(t, "bob", second.Winner)
	require.Empty(t, second.Rewards)

	game, err := client.GetGame(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), game.RoundCounter)

	t.Run("rejects a foreign authority", func(t *testing.T) {
		scenario.Game.Authority = "mallory"
		scenario.Game.Airdrop = 0
		_, err := simulation.NewRunner(client).Run(ctx, scenario)
		require.ErrorContains(t, err, "game already initialized by operator")
	})

	t.Run("surfaces api errors", func(t *testing.T) {
		err := client.Deposit(ctx, "nobody", 1_000)
		var apiErr *simulation.ApiError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	})
}

func startDaemon(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := uint32(listener.Addr().(*net.TCPAddr).Port)
	require.NoError(t, listener.Close())

	cfg := &config.Config{
		DbType:        "sqlite",
		EventDbType:   "badger",
		DbDir:         t.TempDir(),
		EventDbDir:    t.TempDir(),
		SchedulerType: "gocron",
		SeedStoreType: "inmemory",
		MintAuthority: "mint-authority",
		EscrowReserve: 890_880,
		PotReserve:    890_880,
		DevMode:       true,
		LogLevel:      4,
	}
	svc, err := httpservice.NewService(httpservice.Config{Port: port}, cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	url := fmt.Sprintf("http://localhost:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/healthz")
		if err != nil {
			return false
		}
		// nolint:all
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	return url
}
