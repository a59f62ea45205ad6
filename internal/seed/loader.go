package seed

import (
	"context"
	"errors"

	"roomadmin/internal/models"
	"roomadmin/internal/repository"

	"github.com/rs/zerolog"
)

// Loader reads collections from the repository and substitutes the fixtures
// when a document is missing (persisting them) or corrupt (in memory only).
type Loader struct {
	repo   *repository.Repository
	logger *zerolog.Logger
}

func NewLoader(repo *repository.Repository, logger *zerolog.Logger) *Loader {
	l := logger.With().Str("component", "seed").Logger()
	return &Loader{repo: repo, logger: &l}
}

func (l *Loader) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := l.repo.Rooms(ctx)
	if err == nil {
		return rooms, nil
	}
	return fallback(ctx, l, repository.KeyRooms, err, func() ([]models.Room, error) {
		return DefaultRooms(), nil
	}, l.repo.PutRooms)
}

func (l *Loader) Users(ctx context.Context) ([]models.User, error) {
	users, err := l.repo.Users(ctx)
	if err == nil {
		return users, nil
	}
	return fallback(ctx, l, repository.KeyUsers, err, func() ([]models.User, error) {
		users, skipped, err := DefaultUsers()
		for _, name := range skipped {
			l.logger.Warn().Str("name", name).Msg("Skipping fixture user without a two-word name")
		}
		return users, err
	}, l.repo.PutUsers)
}

func (l *Loader) Bookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := l.repo.Bookings(ctx)
	if err == nil {
		return bookings, nil
	}
	return fallback(ctx, l, repository.KeyBookings, err, DefaultBookings, l.repo.PutBookings)
}

func (l *Loader) PutRooms(ctx context.Context, rooms []models.Room) error {
	return l.repo.PutRooms(ctx, rooms)
}

func (l *Loader) PutUsers(ctx context.Context, users []models.User) error {
	return l.repo.PutUsers(ctx, users)
}

func (l *Loader) PutBookings(ctx context.Context, bookings []models.Booking) error {
	return l.repo.PutBookings(ctx, bookings)
}

// Ensure writes the fixtures for every collection that is not stored yet.
func (l *Loader) Ensure(ctx context.Context) error {
	if _, err := l.Rooms(ctx); err != nil {
		return err
	}
	if _, err := l.Users(ctx); err != nil {
		return err
	}
	_, err := l.Bookings(ctx)
	return err
}

func fallback[T any](
	ctx context.Context,
	l *Loader,
	key string,
	loadErr error,
	fixture func() ([]T, error),
	put func(context.Context, []T) error,
) ([]T, error) {
	switch {
	case errors.Is(loadErr, repository.ErrNotFound):
		items, err := fixture()
		if err != nil {
			return nil, err
		}
		if err := put(ctx, items); err != nil {
			return nil, err
		}
		l.logger.Info().Str("collection", key).Int("count", len(items)).Msg("Seeded collection")
		return items, nil
	case errors.Is(loadErr, repository.ErrCorrupt):
		l.logger.Error().Err(loadErr).Str("collection", key).Msg("Failed to load collection, using fixture")
		return fixture()
	default:
		return nil, loadErr
	}
}
