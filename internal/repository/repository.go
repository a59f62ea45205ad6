// Package repository stores each collection as one JSON array document.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"roomadmin/internal/kvstore"
	"roomadmin/internal/models"
)

// Document keys.
const (
	KeyRooms    = "rooms"
	KeyUsers    = "users"
	KeyBookings = "bookings"
)

var (
	ErrNotFound = errors.New("collection not stored")
	ErrCorrupt  = errors.New("collection document is corrupt")
)

type Repository struct {
	store kvstore.Store
}

func New(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Rooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.load(ctx, KeyRooms, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *Repository) PutRooms(ctx context.Context, rooms []models.Room) error {
	return r.save(ctx, KeyRooms, rooms)
}

func (r *Repository) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.load(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) PutUsers(ctx context.Context, users []models.User) error {
	return r.save(ctx, KeyUsers, users)
}

// bookingDoc accepts daysStayed as a number or a numeric string.
type bookingDoc struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"roomId"`
	UserID      string      `json:"userId"`
	BookingDate models.Date `json:"bookingDate"`
	DaysStayed  any         `json:"daysStayed"`
}

// Bookings loads the bookings document. A daysStayed that is missing,
// non-numeric or below one is read as 1.
func (r *Repository) Bookings(ctx context.Context) ([]models.Booking, error) {
	var docs []bookingDoc
	if err := r.load(ctx, KeyBookings, &docs); err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, models.Booking{
			ID:          d.ID,
			RoomID:      d.RoomID,
			UserID:      d.UserID,
			BookingDate: d.BookingDate,
			DaysStayed:  normalizeDays(d.DaysStayed),
		})
	}
	return bookings, nil
}

func (r *Repository) PutBookings(ctx context.Context, bookings []models.Booking) error {
	return r.save(ctx, KeyBookings, bookings)
}

// Remove deletes a collection document.
func (r *Repository) Remove(ctx context.Context, key string) error {
	return r.store.Remove(ctx, key)
}

func (r *Repository) load(ctx context.Context, key string, dst any) error {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%s: %w: %v", key, ErrCorrupt, err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func normalizeDays(v any) int {
	var n int
	switch d := v.(type) {
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 1
		}
		if d >= models.MaxDaysStayed {
			return models.MaxDaysStayed
		}
		n = int(d)
	case string:
		n = leadingInt(strings.TrimSpace(d))
	}
	if n < 1 {
		return 1
	}
	return min(n, models.MaxDaysStayed)
}

// leadingInt reads the integer prefix of s ("3 nights" is 3).
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		return n
	}
	if err != nil {
		return 0
	}
	return n
}
