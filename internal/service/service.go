// Package service implements the room, user, booking and dashboard operations
// on top of whole-collection storage.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/metrics"
	"roomadmin/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Collections loads and replaces whole collections.
type Collections interface {
	Rooms(ctx context.Context) ([]models.Room, error)
	PutRooms(ctx context.Context, rooms []models.Room) error
	Users(ctx context.Context) ([]models.User, error)
	PutUsers(ctx context.Context, users []models.User) error
	Bookings(ctx context.Context) ([]models.Booking, error)
	PutBookings(ctx context.Context, bookings []models.Booking) error
}

// Publisher receives change notifications after a successful write.
type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type core struct {
	store    Collections
	bus      Publisher
	validate *validator.Validate
	logger   *zerolog.Logger
	// mu serializes read-modify-write cycles within this process.
	mu  *sync.Mutex
	now func() time.Time
}

type Services struct {
	Rooms     *RoomService
	Users     *UserService
	Bookings  *BookingService
	Dashboard *DashboardService
}

// New wires the services around one store. bus may be nil.
func New(store Collections, bus Publisher, logger *zerolog.Logger) *Services {
	l := logger.With().Str("component", "service").Logger()
	c := &core{
		store:    store,
		bus:      bus,
		validate: newValidator(),
		logger:   &l,
		mu:       &sync.Mutex{},
		now:      time.Now,
	}
	return &Services{
		Rooms:     &RoomService{c},
		Users:     &UserService{c},
		Bookings:  &BookingService{c},
		Dashboard: &DashboardService{c},
	}
}

func (c *core) rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := c.store.Rooms(ctx)
	if err != nil {
		metrics.IncStoreError("rooms")
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	return rooms, nil
}

func (c *core) users(ctx context.Context) ([]models.User, error) {
	users, err := c.store.Users(ctx)
	if err != nil {
		metrics.IncStoreError("users")
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (c *core) bookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := c.store.Bookings(ctx)
	if err != nil {
		metrics.IncStoreError("bookings")
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return bookings, nil
}

func (c *core) putRooms(ctx context.Context, rooms []models.Room) error {
	if err := c.store.PutRooms(ctx, rooms); err != nil {
		metrics.IncStoreError("rooms")
		return fmt.Errorf("save rooms: %w", err)
	}
	return nil
}

func (c *core) putUsers(ctx context.Context, users []models.User) error {
	if err := c.store.PutUsers(ctx, users); err != nil {
		metrics.IncStoreError("users")
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (c *core) putBookings(ctx context.Context, bookings []models.Booking) error {
	if err := c.store.PutBookings(ctx, bookings); err != nil {
		metrics.IncStoreError("bookings")
		return fmt.Errorf("save bookings: %w", err)
	}
	return nil
}

// views joins the three collections.
func (c *core) views(ctx context.Context) ([]models.BookingView, error) {
	bookings, err := c.bookings(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := c.rooms(ctx)
	if err != nil {
		return nil, err
	}
	users, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	return aggregation.Join(bookings, rooms, users), nil
}

func (c *core) reject(collection string, ie *InputError) error {
	metrics.IncValidationFailure(collection)
	c.logger.Debug().Str("collection", collection).Interface("fields", ie.Fields()).Msg("Rejected input")
	return ie
}

func (c *core) committed(collection, action, eventType string, payload any) {
	metrics.IncMutation(collection, action)
	if c.bus == nil {
		return
	}
	if err := c.bus.PublishJSON(eventType, payload); err != nil {
		c.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
