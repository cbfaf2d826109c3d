package main

import (
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/config"
	"github.com/spinwheel-network/spinwheel/internal/infrastructure/backup"
	"github.com/urfave/cli/v2"
)

var (
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "datadir to back up, defaults to the daemon's one",
	}
	bucketFlag = &cli.StringFlag{
		Name:     "bucket",
		Usage:    "name of the s3 bucket to upload the backup to",
		EnvVars:  []string{"SPINWHEEL_BACKUP_BUCKET"},
		Required: true,
	}
	regionFlag = &cli.StringFlag{
		Name:    "region",
		Usage:   "aws region of the bucket",
		EnvVars: []string{"AWS_REGION"},
		Value:   "us-east-1",
	}

	backupCmd = &cli.Command{
		Name:   "backup",
		Usage:  "Archive the datadir and upload it to s3",
		Action: backupAction,
		Flags:  []cli.Flag{datadirFlag, bucketFlag, regionFlag},
	}
)

func backupAction(ctx *cli.Context) error {
	datadir := ctx.String(datadirFlag.Name)
	if len(datadir) <= 0 {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("invalid config: %s", err)
		}
		datadir = cfg.Datadir
	}

	store, err := backup.NewS3Store(
		ctx.Context, ctx.String(regionFlag.Name), ctx.String(bucketFlag.Name),
	)
	if err != nil {
		return err
	}

	key, err := backup.Run(ctx.Context, datadir, store)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
