package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/repository/testutil"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()

	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{})
	bus.Subscribe(events.EventTypeDepositReceived, func(ctx context.Context, e events.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		close(done)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, uow.AccountRepository().AddCredit(ctx, "alice", 10))

	uow.EventBus().Publish(events.DepositReceivedEvent{AccountID: "alice", Amount: 10, NewCredit: 10})

	require.NoError(t, uow.Commit())

	// The commit is visible outside the transaction
	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, int64(10), account.Credit)

	// The stashed event reaches the bus after commit
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flushed event")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()

	fired := false
	bus.Subscribe(events.EventTypeDepositReceived, func(ctx context.Context, e events.Event) {
		fired = true
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, "alice", "")
	require.NoError(t, err)
	uow.EventBus().Publish(events.DepositReceivedEvent{AccountID: "alice", Amount: 10})

	require.NoError(t, uow.Rollback())

	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, account)

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired)
}

func TestUnitOfWork_RepositoriesPanicBeforeBegin(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.Create()

	assert.Panics(t, func() { uow.AccountRepository() })
}

func TestSystemRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	system := NewSystemRepository(testDB.DB)
	ctx := context.Background()

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("not initialized", func(t *testing.T) {
		config, err := system.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("initialization is idempotent", func(t *testing.T) {
		require.NoError(t, system.EnsureInitialized(ctx, epoch))
		// A second call must not overwrite the stored epoch
		require.NoError(t, system.EnsureInitialized(ctx, epoch.Add(time.Hour)))

		config, err := system.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.True(t, config.Epoch.Equal(epoch))
	})

	t.Run("counters", func(t *testing.T) {
		require.NoError(t, system.IncrementUserCount(ctx))
		require.NoError(t, system.IncrementUserCount(ctx))
		require.NoError(t, system.AddLoyaltyPoints(ctx, 25))

		config, err := system.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(2), config.UserCount)
		assert.Equal(t, int64(25), config.LoyaltyPoints)
	})
}
