package kvstore

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// switchableStore is a memory store that can be taken offline.
type switchableStore struct {
	*MemoryStore
	down atomic.Bool
}

var errOffline = errors.New("connection refused")

func (s *switchableStore) Get(ctx context.Context, key string) (string, error) {
	if s.down.Load() {
		return "", errOffline
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *switchableStore) Set(ctx context.Context, key, value string) error {
	if s.down.Load() {
		return errOffline
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *switchableStore) Remove(ctx context.Context, key string) error {
	if s.down.Load() {
		return errOffline
	}
	return s.MemoryStore.Remove(ctx, key)
}

func TestFailoverStore(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	fallback.On("Get", ctx, DirtyKey).Return("", ErrNotFound).Once()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "rooms").Return("[]", nil).Once()

		got, err := store.Get(ctx, "rooms")
		assert.NoError(t, err)
		assert.Equal(t, "[]", got)
		assert.False(t, store.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("NotFoundInBothStores", func(t *testing.T) {
		primary.On("Get", ctx, "users").Return("", ErrNotFound).Once()
		fallback.On("Get", ctx, "users").Return("", ErrNotFound).Once()

		_, err := store.Get(ctx, "users")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, store.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("MissingOnPrimaryRestoredFromFallback", func(t *testing.T) {
		primary.On("Get", ctx, "bookings").Return("", ErrNotFound).Once()
		fallback.On("Get", ctx, "bookings").Return("[9]", nil).Once()
		primary.On("Set", ctx, "bookings", "[9]").Return(nil).Once()

		got, err := store.Get(ctx, "bookings")
		assert.NoError(t, err)
		assert.Equal(t, "[9]", got)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("WriteMirrorsToFallback", func(t *testing.T) {
		primary.On("Set", ctx, "rooms", "[1]").Return(nil).Once()
		fallback.On("Set", ctx, "rooms", "[1]").Return(nil).Once()

		assert.NoError(t, store.Set(ctx, "rooms", "[1]"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "bookings").Return("", errors.New("connection refused")).Once()
		fallback.On("Get", ctx, "bookings").Return("[2]", nil).Once()

		got, err := store.Get(ctx, "bookings")
		assert.NoError(t, err)
		assert.Equal(t, "[2]", got)
		assert.True(t, store.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SkipsPrimaryWhileDown", func(t *testing.T) {
		fallback.On("Set", ctx, DirtyKey, `["bookings"]`).Return(nil).Once()
		fallback.On("Set", ctx, "bookings", "[3]").Return(nil).Once()

		assert.NoError(t, store.Set(ctx, "bookings", "[3]"))
		primary.AssertNotCalled(t, "Set", ctx, "bookings", "[3]")
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryResyncsBeforeServing", func(t *testing.T) {
		store.mu.Lock()
		store.lastCheck = time.Now().Add(-2 * time.Minute)
		store.mu.Unlock()

		fallback.On("Get", ctx, "bookings").Return("[3]", nil).Once()
		primary.On("Set", ctx, "bookings", "[3]").Return(nil).Once()
		fallback.On("Remove", ctx, DirtyKey).Return(nil).Once()
		primary.On("Get", ctx, "rooms").Return("[4]", nil).Once()

		got, err := store.Get(ctx, "rooms")
		assert.NoError(t, err)
		assert.Equal(t, "[4]", got)
		assert.False(t, store.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

func newSwitchableFailover(t *testing.T) (*FailoverStore, *switchableStore, *MemoryStore) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	primary := &switchableStore{MemoryStore: NewMemoryStore()}
	fallback := NewMemoryStore()
	return NewFailoverStore(primary, fallback, &logger), primary, fallback
}

func TestFailoverEmptyPrimaryServesFallback(t *testing.T) {
	ctx := context.Background()
	store, primary, fallback := newSwitchableFailover(t)
	require.NoError(t, fallback.Set(ctx, "rooms", `[{"id":"R-REAL"}]`))

	got, err := store.Get(ctx, "rooms")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"R-REAL"}]`, got)

	copied, err := primary.MemoryStore.Get(ctx, "rooms")
	require.NoError(t, err)
	assert.Equal(t, got, copied)
}

func TestFailoverOutageWritesSurviveRecovery(t *testing.T) {
	ctx := context.Background()
	store, primary, fallback := newSwitchableFailover(t)

	require.NoError(t, store.Set(ctx, "bookings", "[OLD]"))
	require.NoError(t, store.Set(ctx, "rooms", "[R]"))

	primary.down.Store(true)
	require.NoError(t, store.Set(ctx, "bookings", "[NEW]"))
	require.NoError(t, store.Remove(ctx, "rooms"))
	assert.True(t, store.Degraded())

	primary.down.Store(false)
	store.mu.Lock()
	store.lastCheck = time.Now().Add(-2 * RetryInterval)
	store.mu.Unlock()

	got, err := store.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, "[NEW]", got)
	assert.False(t, store.Degraded())

	onPrimary, err := primary.MemoryStore.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, "[NEW]", onPrimary)

	_, err = primary.MemoryStore.Get(ctx, "rooms")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fallback.Get(ctx, DirtyKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailoverDirtyKeysSurviveRestart(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	store, primary, fallback := newSwitchableFailover(t)

	require.NoError(t, store.Set(ctx, "users", "[OLD]"))
	primary.down.Store(true)
	require.NoError(t, store.Set(ctx, "users", "[NEW]"))

	// The process restarts after the primary comes back.
	primary.down.Store(false)
	restarted := NewFailoverStore(primary, fallback, &logger)

	got, err := restarted.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "[NEW]", got)
}

func TestFailoverResyncFailureKeepsServingFallback(t *testing.T) {
	ctx := context.Background()
	store, primary, _ := newSwitchableFailover(t)

	require.NoError(t, store.Set(ctx, "rooms", "[OLD]"))
	primary.down.Store(true)
	require.NoError(t, store.Set(ctx, "rooms", "[NEW]"))

	store.mu.Lock()
	store.lastCheck = time.Now().Add(-2 * RetryInterval)
	store.mu.Unlock()

	got, err := store.Get(ctx, "rooms")
	require.NoError(t, err)
	assert.Equal(t, "[NEW]", got)
	assert.True(t, store.Degraded())
}
