package config_test

import (
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("SPINWHEEL_DATADIR", datadir)
	t.Setenv("SPINWHEEL_DB_TYPE", "badger")
	t.Setenv("SPINWHEEL_AUTOPILOT", "true")
	t.Setenv("SPINWHEEL_AUTOPILOT_ROUND_DURATION", "30")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, datadir, cfg.Datadir)
	require.Equal(t, "badger", cfg.DbType)
	require.Equal(t, "badger", cfg.EventDbType)
	require.Equal(t, uint32(config.DefaultPort), cfg.Port)
	require.True(t, cfg.AutopilotEnabled)
	require.Equal(t, int64(30), cfg.AutopilotRoundDuration)
	require.DirExists(t, cfg.DbDir)
}

func TestValidate(t *testing.T) {
	validConfig := func(t *testing.T) config.Config {
		return config.Config{
			DbType:                 "sqlite",
			EventDbType:            "badger",
			DbDir:                  t.TempDir(),
			EventDbDir:             t.TempDir(),
			SchedulerType:          "gocron",
			SeedStoreType:          "inmemory",
			MintAuthority:          "mint-authority",
			LogLevel:               4,
			AutopilotEnabled:       true,
			AutopilotRoundDuration: 60,
			AutopilotRoundInterval: 10,
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig(t)
		require.NoError(t, cfg.Validate())

		svc, err := cfg.AppService()
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Stop()
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"event db type", func(c *config.Config) { c.EventDbType = "sqlite" }},
			{"db type", func(c *config.Config) { c.DbType = "postgres" }},
			{"scheduler type", func(c *config.Config) { c.SchedulerType = "block" }},
			{"seed store type", func(c *config.Config) { c.SeedStoreType = "vault" }},
			{"missing redis url", func(c *config.Config) { c.SeedStoreType = "redis" }},
			{"missing mint authority", func(c *config.Config) { c.MintAuthority = "" }},
			{"autopilot round duration", func(c *config.Config) { c.AutopilotRoundDuration = 0 }},
			{"autopilot round interval", func(c *config.Config) { c.AutopilotRoundInterval = -1 }},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				cfg := validConfig(t)
				f.mutate(&cfg)
				require.Error(t, cfg.Validate())
			})
		}
	})

	t.Run("app service requires validation", func(t *testing.T) {
		cfg := validConfig(t)
		_, err := cfg.AppService()
		require.Error(t, err)
	})
}
