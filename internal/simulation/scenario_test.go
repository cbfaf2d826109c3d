package simulation_test

import (
	"strings"
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/simulation"
	"github.com/stretchr/testify/require"
)

const validScenario = `
version: "1"
game:
  authority: operator
  house_wallet: house
  reward_mint: spin
  fee_bps: 300
  airdrop: 10000000
players:
  - id: alice
    airdrop: 2000000000
    deposit: 1000000000
  - id: bob
    airdrop: 2000000000
    deposit: 1000000000
rounds:
  - number: 1
    duration: 3
    bets:
      alice: 400000000
      bob: 600000000
  - number: 2
    duration: 2
    skip_rewards: true
    bets:
      bob: 50000000
`

func TestParseScenario(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		scenario, err := simulation.ParseScenario([]byte(validScenario))
		require.NoError(t, err)
		require.Equal(t, "operator", scenario.Game.Authority)
		require.Equal(t, uint16(300), scenario.Game.FeeBps)
		require.Len(t, scenario.Players, 2)
		require.Len(t, scenario.Rounds, 2)
		require.Equal(t, []string{"alice", "bob"}, scenario.Rounds[0].Players())
		require.Equal(t, uint64(600_000_000), scenario.Rounds[0].Bets["bob"])
		require.True(t, scenario.Rounds[1].SkipRewards)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name        string
			old, new    string
			expectedErr string
		}{
			{"fee above max", "fee_bps: 300", "fee_bps: 600", "invalid scenario"},
			{"bet below min", "bob: 50000000", "bob: 5000", "invalid scenario"},
			{"round too long", "duration: 2\n    skip", "duration: 301\n    skip", "invalid scenario"},
			{"unknown field", "version: \"1\"", "version: \"1\"\nnetwork: regtest", "invalid scenario"},
			{"unknown player", "bob: 50000000", "carol: 50000000", "unknown player carol"},
			{"duplicated player", "id: bob", "id: alice", "duplicated player alice"},
			{"malformed yaml", "rounds:", "rounds: [", "error converting scenario YAML"},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				doc := strings.Replace(validScenario, f.old, f.new, 1)
				require.NotEqual(t, validScenario, doc)

				_, err := simulation.ParseScenario([]byte(doc))
				require.ErrorContains(t, err, f.expectedErr)
			})
		}
	})
}
