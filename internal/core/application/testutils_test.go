package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
	"github.com/spinwheel-network/spinwheel/internal/infrastructure/db"
	inmemoryledger "github.com/spinwheel-network/spinwheel/internal/infrastructure/ledger/inmemory"
	watermillnotifier "github.com/spinwheel-network/spinwheel/internal/infrastructure/notifier/watermill"
	inmemoryseedstore "github.com/spinwheel-network/spinwheel/internal/infrastructure/seed-store/inmemory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	operator      = "operator"
	house         = "house"
	alice         = "alice"
	bob           = "bob"
	carol         = "carol"
	rewardMint    = "spin-reward"
	mintAuthority = "mint-authority"
	reserve       = uint64(1_000)
	startTime     = int64(1_700_000_000)
)

var commitment = domain.Seed{
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
}

type testClock struct {
	now int64
}

func (c *testClock) Now() int64 {
	return atomic.LoadInt64(&c.now)
}

func (c *testClock) Advance(seconds int64) {
	atomic.AddInt64(&c.now, seconds)
}

type testEnv struct {
	svc         *service
	repoManager ports.RepoManager
	values      ports.ValueLedger
	tokens      ports.TokenLedger
	seeds       ports.SeedStore
	scheduler   *manualScheduler
	clock       *testClock
}

func newTestEnv(t *testing.T, config Config) *testEnv {
	return newTestEnvWith(t, config, inmemoryledger.NewValueLedger(), nil)
}

func newTestEnvWith(
	t *testing.T, config Config,
	values ports.ValueLedger, wrapRepo func(ports.RepoManager) ports.RepoManager,
) *testEnv {
	t.Helper()

	repoManager, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	if wrapRepo != nil {
		repoManager = wrapRepo(repoManager)
	}

	if len(config.MintAuthority) <= 0 {
		config.MintAuthority = mintAuthority
	}
	config.DevMode = true

	clock := &testClock{now: startTime}
	tokens := inmemoryledger.NewTokenLedger()
	seeds := inmemoryseedstore.NewSeedStore()
	scheduler := newManualScheduler(clock)

	svc, err := NewService(
		config, repoManager, values, tokens, scheduler, seeds,
		watermillnotifier.NewNotifier(),
	)
	require.NoError(t, err)

	s := svc.(*service)
	s.now = clock.Now
	t.Cleanup(s.Stop)

	return &testEnv{
		svc:         s,
		repoManager: repoManager,
		values:      values,
		tokens:      tokens,
		seeds:       seeds,
		scheduler:   scheduler,
		clock:       clock,
	}
}

func (e *testEnv) initGame(t *testing.T, feeBps uint16) {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.InitGame(ctx, operator, house, rewardMint, feeBps)
	require.NoError(t, err)
	require.NoError(t, e.svc.Airdrop(ctx, operator, 100*reserve))
}

// fund airdrops enough value to the player's wallet to cover the escrow
// reserve and deposits amount into the player's escrow.
func (e *testEnv) fund(t *testing.T, player string, amount uint64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.svc.Airdrop(ctx, player, amount+reserve))
	_, err := e.svc.Deposit(ctx, player, amount)
	require.NoError(t, err)
}

func (e *testEnv) startRound(t *testing.T, duration int64) *domain.Round {
	t.Helper()
	ctx := context.Background()

	game, err := e.svc.GetGameConfig(ctx)
	require.NoError(t, err)
	round, err := e.svc.StartRound(ctx, operator, commitment, duration, game.RoundCounter)
	require.NoError(t, err)
	return round
}

func (e *testEnv) balance(t *testing.T, account string) uint64 {
	t.Helper()
	balance, err := e.values.Balance(context.Background(), account)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) escrowBalance(t *testing.T, owner string) uint64 {
	t.Helper()
	escrow, err := e.svc.GetEscrow(context.Background(), owner)
	require.NoError(t, err)
	return escrow.Balance
}

type scheduledTask struct {
	at   int64
	task func()
}

// manualScheduler collects scheduled tasks and runs them only when the test
// asks to.
type manualScheduler struct {
	lock  sync.Mutex
	clock *testClock
	tasks []scheduledTask
}

func newManualScheduler(clock *testClock) *manualScheduler {
	return &manualScheduler{clock: clock}
}

func (s *manualScheduler) Start() {}

func (s *manualScheduler) Stop() {}

func (s *manualScheduler) AfterNow(at int64) bool {
	return at > s.clock.Now()
}

func (s *manualScheduler) ScheduleTaskOnce(at int64, task func()) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks = append(s.tasks, scheduledTask{at, task})
	sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].at < s.tasks[j].at })
	return nil
}

func (s *manualScheduler) pending() []int64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	at := make([]int64, 0, len(s.tasks))
	for _, t := range s.tasks {
		at = append(at, t.at)
	}
	return at
}

// runNext pops the earliest task and runs it synchronously.
func (s *manualScheduler) runNext(t *testing.T) {
	t.Helper()

	s.lock.Lock()
	require.NotEmpty(t, s.tasks, "no scheduled task")
	next := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.lock.Unlock()

	next.task()
}

type mockedValueLedger struct {
	mock.Mock
}

func (m *mockedValueLedger) OpenAccount(
	ctx context.Context, account string, reserve uint64, payer string,
) error {
	args := m.Called(ctx, account, reserve, payer)
	return args.Error(0)
}

func (m *mockedValueLedger) CloseAccount(
	ctx context.Context, account, beneficiary string,
) error {
	args := m.Called(ctx, account, beneficiary)
	return args.Error(0)
}

func (m *mockedValueLedger) HasAccount(ctx context.Context, account string) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *mockedValueLedger) Balance(ctx context.Context, account string) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockedValueLedger) Available(ctx context.Context, account string) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockedValueLedger) Transfer(ctx context.Context, transfers ...ports.Transfer) error {
	args := m.Called(ctx, transfers)
	return args.Error(0)
}

func (m *mockedValueLedger) Airdrop(ctx context.Context, account string, amount uint64) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

// failingRepoManager makes saves of round events fail once failSaves is set.
type failingRepoManager struct {
	ports.RepoManager
	failSaves *atomic.Bool
}

func (r failingRepoManager) Events() domain.RoundEventRepository {
	return failingEventRepository{r.RepoManager.Events(), r.failSaves}
}

type failingEventRepository struct {
	domain.RoundEventRepository
	failSaves *atomic.Bool
}

func (r failingEventRepository) Save(
	ctx context.Context, id uint64, events ...domain.RoundEvent,
) (*domain.Round, error) {
	if r.failSaves.Load() {
		return nil, errSaveFailed
	}
	return r.RoundEventRepository.Save(ctx, id, events...)
}

var errSaveFailed = errors.New("event store unavailable")
