package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/config"
	httpservice "github.com/spinwheel-network/spinwheel/internal/interface/http"
	"github.com/urfave/cli/v2"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var urlFlag = &cli.StringFlag{
	Name:  "url",
	Usage: "the url of the spinwheel daemon to connect to",
	Value: fmt.Sprintf("http://localhost:%d", config.DefaultPort),
}

func mainAction(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svcConfig := httpservice.Config{
		Port: cfg.Port,
	}

	svc, err := httpservice.NewService(svcConfig, cfg)
	if err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)

	return nil
}

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	app.Name = "spinwheeld"
	app.Usage = "run or manage the spin wheel betting daemon"
	app.UsageText = "Run the daemon with no subcommand, or use the subcommands to inspect a running one"
	app.Commands = append(app.Commands, roundCmd, gameCmd, escrowCmd, backupCmd, simulateCmd)
	app.Action = mainAction
	app.Flags = append(app.Flags, urlFlag)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
