package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/spinwheel-network/spinwheel/internal/core/application"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
	"github.com/spinwheel-network/spinwheel/internal/infrastructure/db"
	inmemoryledger "github.com/spinwheel-network/spinwheel/internal/infrastructure/ledger/inmemory"
	watermillnotifier "github.com/spinwheel-network/spinwheel/internal/infrastructure/notifier/watermill"
	timescheduler "github.com/spinwheel-network/spinwheel/internal/infrastructure/scheduler/gocron"
	inmemoryseedstore "github.com/spinwheel-network/spinwheel/internal/infrastructure/seed-store/inmemory"
	redisseedstore "github.com/spinwheel-network/spinwheel/internal/infrastructure/seed-store/redis"
)

var (
	supportedEventDbs = supportedType{
		"badger": {},
	}
	supportedDbs = supportedType{
		"badger": {},
		"sqlite": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedSeedStores = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType        string
	EventDbType   string
	DbDir         string
	EventDbDir    string
	SchedulerType string
	SeedStoreType string
	RedisUrl      string

	MintAuthority string
	EscrowReserve uint64
	PotReserve    uint64
	DevMode       bool

	AutopilotEnabled       bool
	AutopilotRoundDuration int64
	AutopilotRoundInterval int64

	repo      ports.RepoManager
	svc       application.Service
	values    ports.ValueLedger
	tokens    ports.TokenLedger
	scheduler ports.SchedulerService
	seeds     ports.SeedStore
	notifier  ports.Notifier
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir                = "DATADIR"
	Port                   = "PORT"
	LogLevel               = "LOG_LEVEL"
	EventDbType            = "EVENT_DB_TYPE"
	DbType                 = "DB_TYPE"
	SchedulerType          = "SCHEDULER_TYPE"
	SeedStoreType          = "SEED_STORE_TYPE"
	RedisUrl               = "REDIS_URL"
	MintAuthority          = "MINT_AUTHORITY"
	EscrowReserve          = "ESCROW_RESERVE"
	PotReserve             = "POT_RESERVE"
	DevMode                = "DEV_MODE"
	AutopilotEnabled       = "AUTOPILOT"
	AutopilotRoundDuration = "AUTOPILOT_ROUND_DURATION"
	AutopilotRoundInterval = "AUTOPILOT_ROUND_INTERVAL"

	defaultDatadir                = appDataDir("spinwheeld")
	DefaultPort                   = 7171
	defaultLogLevel               = 4
	defaultDbType                 = "sqlite"
	defaultEventDbType            = "badger"
	defaultSchedulerType          = "gocron"
	defaultSeedStoreType          = "inmemory"
	defaultMintAuthority          = "mint-authority"
	defaultEscrowReserve          = 890_880
	defaultPotReserve             = 890_880
	defaultDevMode                = false
	defaultAutopilotEnabled       = false
	defaultAutopilotRoundDuration = 60
	defaultAutopilotRoundInterval = 10
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("SPINWHEEL")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(EventDbType, defaultEventDbType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(SeedStoreType, defaultSeedStoreType)
	viper.SetDefault(MintAuthority, defaultMintAuthority)
	viper.SetDefault(EscrowReserve, defaultEscrowReserve)
	viper.SetDefault(PotReserve, defaultPotReserve)
	viper.SetDefault(DevMode, defaultDevMode)
	viper.SetDefault(AutopilotEnabled, defaultAutopilotEnabled)
	viper.SetDefault(AutopilotRoundDuration, defaultAutopilotRoundDuration)
	viper.SetDefault(AutopilotRoundInterval, defaultAutopilotRoundInterval)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")
	if err := makeDirectoryIfNotExists(dbPath); err != nil {
		return nil, fmt.Errorf("error while creating db dir: %s", err)
	}

	return &Config{
		Datadir:                viper.GetString(Datadir),
		Port:                   viper.GetUint32(Port),
		LogLevel:               viper.GetInt(LogLevel),
		DbType:                 viper.GetString(DbType),
		EventDbType:            viper.GetString(EventDbType),
		DbDir:                  dbPath,
		EventDbDir:             dbPath,
		SchedulerType:          viper.GetString(SchedulerType),
		SeedStoreType:          viper.GetString(SeedStoreType),
		RedisUrl:               viper.GetString(RedisUrl),
		MintAuthority:          viper.GetString(MintAuthority),
		EscrowReserve:          viper.GetUint64(EscrowReserve),
		PotReserve:             viper.GetUint64(PotReserve),
		DevMode:                viper.GetBool(DevMode),
		AutopilotEnabled:       viper.GetBool(AutopilotEnabled),
		AutopilotRoundDuration: viper.GetInt64(AutopilotRoundDuration),
		AutopilotRoundInterval: viper.GetInt64(AutopilotRoundInterval),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf("event db type not supported, please select one of: %s", supportedEventDbs)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if !supportedSeedStores.supports(c.SeedStoreType) {
		return fmt.Errorf("seed store type not supported, please select one of: %s", supportedSeedStores)
	}
	if c.SeedStoreType == "redis" && len(c.RedisUrl) <= 0 {
		return fmt.Errorf("missing redis url")
	}
	if len(c.MintAuthority) <= 0 {
		return fmt.Errorf("missing mint authority")
	}
	if c.AutopilotEnabled {
		if c.AutopilotRoundDuration < domain.MinRoundDuration ||
			c.AutopilotRoundDuration > domain.MaxRoundDuration {
			return fmt.Errorf(
				"invalid autopilot round duration, must be in range [%d, %d] seconds",
				domain.MinRoundDuration, domain.MaxRoundDuration,
			)
		}
		if c.AutopilotRoundInterval < 0 {
			return fmt.Errorf("invalid autopilot round interval, must not be negative")
		}
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerServices(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.seedStoreService(); err != nil {
		return err
	}
	c.notifier = watermillnotifier.NewNotifier()
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()
	logger.SetLevel(log.Level(c.LogLevel))

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerServices() error {
	c.values = inmemoryledger.NewValueLedger()
	c.tokens = inmemoryledger.NewTokenLedger()
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler()
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) seedStoreService() error {
	var svc ports.SeedStore
	var err error
	switch c.SeedStoreType {
	case "inmemory":
		svc = inmemoryseedstore.NewSeedStore()
	case "redis":
		svc, err = redisseedstore.NewSeedStore(c.RedisUrl)
	default:
		err = fmt.Errorf("unknown seed store type")
	}
	if err != nil {
		return err
	}

	c.seeds = svc
	return nil
}

func (c *Config) appService() error {
	if c.repo == nil {
		return fmt.Errorf("config not validated")
	}

	svc, err := application.NewService(
		application.Config{
			MintAuthority: c.MintAuthority,
			EscrowReserve: c.EscrowReserve,
			PotReserve:    c.PotReserve,
			DevMode:       c.DevMode,
			Autopilot: application.AutopilotConfig{
				Enabled:       c.AutopilotEnabled,
				RoundDuration: c.AutopilotRoundDuration,
				RoundInterval: c.AutopilotRoundInterval,
			},
		},
		c.repo, c.values, c.tokens, c.scheduler, c.seeds, c.notifier,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// appDataDir returns the default data directory of the app under the user's
// home, or the current directory if the home is not known.
func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "."+strings.ToLower(appName))
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
