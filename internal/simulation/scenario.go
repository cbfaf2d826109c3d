package simulation

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"
)

//go:embed schema.yaml
var schemaYAML []byte

type Scenario struct {
	Version string        `json:"version"`
	Game    GameSetup     `json:"game"`
	Players []PlayerSetup `json:"players"`
	Rounds  []RoundPlan   `json:"rounds"`
}

type GameSetup struct {
	Authority   string `json:"authority"`
	HouseWallet string `json:"house_wallet"`
	RewardMint  string `json:"reward_mint"`
	FeeBps      uint16 `json:"fee_bps"`
	// Airdrop funds the authority wallet that pays the reserve of every
	// round pot.
	Airdrop uint64 `json:"airdrop,omitempty"`
}

type PlayerSetup struct {
	Id string `json:"id"`
	// Airdrop is credited to the player wallet before the deposit, requires
	// the daemon to run in dev mode.
	Airdrop uint64 `json:"airdrop,omitempty"`
	Deposit uint64 `json:"deposit"`
}

type RoundPlan struct {
	Number      int               `json:"number"`
	Duration    int64             `json:"duration"`
	SkipRewards bool              `json:"skip_rewards,omitempty"`
	Bets        map[string]uint64 `json:"bets"`
}

// Players returns the ids of the players betting in the round, sorted.
func (p RoundPlan) Players() []string {
	players := make([]string, 0, len(p.Bets))
	for player := range p.Bets {
		players = append(players, player)
	}
	sort.Strings(players)
	return players
}

func LoadScenario(path string) (*Scenario, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	return ParseScenario(buf)
}

// ParseScenario validates the given yaml document against the scenario
// schema and decodes it.
func ParseScenario(buf []byte) (*Scenario, error) {
	schemaJSON, err := yaml.YAMLToJSON(schemaYAML)
	if err != nil {
		return nil, fmt.Errorf("error converting schema YAML to JSON: %w", err)
	}
	scenarioJSON, err := yaml.YAMLToJSON(buf)
	if err != nil {
		return nil, fmt.Errorf("error converting scenario YAML to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(scenarioJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("error validating scenario: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("invalid scenario: %s", strings.Join(errs, "; "))
	}

	var scenario Scenario
	if err := yaml.Unmarshal(buf, &scenario); err != nil {
		return nil, fmt.Errorf("error parsing scenario YAML: %w", err)
	}

	players := make(map[string]struct{}, len(scenario.Players))
	for _, p := range scenario.Players {
		if _, ok := players[p.Id]; ok {
			return nil, fmt.Errorf("invalid scenario: duplicated player %s", p.Id)
		}
		players[p.Id] = struct{}{}
	}
	for _, round := range scenario.Rounds {
		for player := range round.Bets {
			if _, ok := players[player]; !ok {
				return nil, fmt.Errorf(
					"invalid scenario: unknown player %s in round %d", player, round.Number,
				)
			}
		}
	}
	return &scenario, nil
}
