package seed

import (
	"context"
	"io"
	"testing"

	"roomadmin/internal/kvstore"
	"roomadmin/internal/models"
	"roomadmin/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures(t *testing.T) {
	rooms := DefaultRooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, models.RoomAvailable, rooms[0].Status)
	assert.Equal(t, models.RoomDraft, rooms[1].Status)
	assert.Equal(t, models.RoomOccupied, rooms[2].Status)

	users, skipped, err := DefaultUsers()
	require.NoError(t, err)
	assert.Empty(t, skipped)
	ids := make(map[string]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	assert.True(t, ids["2000-JO-DO-10-4-7"])

	bookings, err := DefaultBookings()
	require.NoError(t, err)
	require.NotEmpty(t, bookings)
	for _, b := range bookings {
		assert.True(t, ids[b.UserID], "booking %s references unknown user %s", b.ID, b.UserID)
		assert.GreaterOrEqual(t, b.DaysStayed, 1)
	}
}

func TestLoaderSeedsMissingCollections(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	loader := NewLoader(repository.New(store), &logger)

	require.NoError(t, loader.Ensure(ctx))

	for _, key := range []string{repository.KeyRooms, repository.KeyUsers, repository.KeyBookings} {
		_, err := store.Get(ctx, key)
		assert.NoError(t, err, key)
	}

	rooms, err := loader.Rooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

func TestLoaderKeepsStoredCollections(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	repo := repository.New(store)
	loader := NewLoader(repo, &logger)

	require.NoError(t, repo.PutRooms(ctx, []models.Room{}))
	rooms, err := loader.Rooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestLoaderCorruptFallsBackWithoutWriting(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	loader := NewLoader(repository.New(store), &logger)

	require.NoError(t, store.Set(ctx, repository.KeyRooms, "not json"))

	rooms, err := loader.Rooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultRooms(), rooms)

	raw, err := store.Get(ctx, repository.KeyRooms)
	require.NoError(t, err)
	assert.Equal(t, "not json", raw)
}

func TestLoaderKeepsFallbackDataWhenPrimaryIsEmpty(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	primary := kvstore.NewMemoryStore()
	fallback := kvstore.NewMemoryStore()

	stored := []models.Room{{ID: "R-REAL", Name: "Harbor View", Capacity: 2, Category: "Deluxe", Price: 120, Status: models.RoomAvailable}}
	require.NoError(t, repository.New(fallback).PutRooms(ctx, stored))
	before, err := fallback.Get(ctx, repository.KeyRooms)
	require.NoError(t, err)

	store := kvstore.NewFailoverStore(primary, fallback, &logger)
	loader := NewLoader(repository.New(store), &logger)

	rooms, err := loader.Rooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, rooms)

	after, err := fallback.Get(ctx, repository.KeyRooms)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	onPrimary, err := primary.Get(ctx, repository.KeyRooms)
	require.NoError(t, err)
	assert.Equal(t, before, onPrimary)
}
