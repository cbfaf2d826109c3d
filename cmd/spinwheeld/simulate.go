package main

import (
	"encoding/json"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/simulation"
	"github.com/urfave/cli/v2"
)

var (
	scenarioFlag = &cli.StringFlag{
		Name:     "scenario",
		Usage:    "path to the yaml scenario to play",
		Required: true,
	}

	simulateCmd = &cli.Command{
		Name:   "simulate",
		Usage:  "Play a scenario of rounds against a running daemon",
		Action: simulateAction,
		Flags:  []cli.Flag{scenarioFlag},
	}
)

func simulateAction(ctx *cli.Context) error {
	scenario, err := simulation.LoadScenario(ctx.String(scenarioFlag.Name))
	if err != nil {
		return err
	}

	client := simulation.NewRestClient(ctx.String(urlFlag.Name))
	report, err := simulation.NewRunner(client).Run(ctx.Context, scenario)
	if err != nil {
		return err
	}

	buf, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
