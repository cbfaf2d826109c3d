package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
)

// flags
var (
	roundIdFlag = &cli.Uint64Flag{
		Name:     "id",
		Usage:    "id of the round",
		Required: true,
	}
	ownerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "owner of the escrow account",
		Required: true,
	}
	afterFlag = &cli.Int64Flag{
		Name:  "after",
		Usage: "list only rounds started after this unix timestamp",
	}
	beforeFlag = &cli.Int64Flag{
		Name:  "before",
		Usage: "list only rounds started before this unix timestamp",
	}
)

// commands
var (
	roundCmd = &cli.Command{
		Name:  "round",
		Usage: "Inspect betting rounds",
		Subcommands: append(
			cli.Commands{},
			roundShowCmd,
			roundListCmd,
		),
	}
	roundShowCmd = &cli.Command{
		Name:   "show",
		Usage:  "Show a round",
		Action: roundShowAction,
		Flags:  []cli.Flag{roundIdFlag},
	}
	roundListCmd = &cli.Command{
		Name:   "list",
		Usage:  "List the ids of the rounds",
		Action: roundListAction,
		Flags:  []cli.Flag{afterFlag, beforeFlag},
	}
	gameCmd = &cli.Command{
		Name:  "game",
		Usage: "Inspect the game configuration",
		Subcommands: append(
			cli.Commands{},
			gameShowCmd,
		),
	}
	gameShowCmd = &cli.Command{
		Name:   "show",
		Usage:  "Show the game configuration",
		Action: gameShowAction,
	}
	escrowCmd = &cli.Command{
		Name:  "escrow",
		Usage: "Inspect escrow accounts",
		Subcommands: append(
			cli.Commands{},
			escrowShowCmd,
		),
	}
	escrowShowCmd = &cli.Command{
		Name:   "show",
		Usage:  "Show the escrow account of a user",
		Action: escrowShowAction,
		Flags:  []cli.Flag{ownerFlag},
	}
)

func roundShowAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/rounds/%d", ctx.String("url"), ctx.Uint64("id"))
	return printJSON(url)
}

func roundListAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/v1/rounds?after=%d&before=%d",
		ctx.String("url"), ctx.Int64("after"), ctx.Int64("before"),
	)
	return printJSON(url)
}

func gameShowAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/game", ctx.String("url"))
	return printJSON(url)
}

func escrowShowAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/escrow/%s", ctx.String("url"), ctx.String("owner"))
	return printJSON(url)
}

func printJSON(url string) error {
	result, err := get[map[string]interface{}](url)
	if err != nil {
		return err
	}

	buf, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func get[T any](url string) (result T, err error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed to get: %s", string(buf))
		return
	}

	err = json.Unmarshal(buf, &result)
	return
}
