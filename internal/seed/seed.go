// Package seed supplies the fixture collections used when nothing is stored yet.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"roomadmin/internal/models"
)

var (
	//go:embed fixtures/user.json
	userFixture []byte
	//go:embed fixtures/booking.json
	bookingFixture []byte
)

// DefaultRooms is the three-room fixture.
func DefaultRooms() []models.Room {
	return []models.Room{
		{ID: "1", Name: "Room A", Capacity: 2, Category: "Deluxe", Price: 500000, Status: models.RoomAvailable},
		{ID: "2", Name: "Room B", Capacity: 4, Category: "Suite", Price: 750000, Status: models.RoomDraft},
		{ID: "3", Name: "Room C", Capacity: 6, Category: "VIP", Price: 1000000, Status: models.RoomOccupied},
	}
}

// DefaultUsers returns the embedded users with generated ids. Entries whose
// name cannot produce an id are returned in skipped.
func DefaultUsers() (users []models.User, skipped []string, err error) {
	var raw []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(userFixture, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode user fixture: %w", err)
	}

	users = make([]models.User, 0, len(raw))
	for _, u := range raw {
		id, err := models.GenerateUserID(u.Name)
		if err != nil {
			skipped = append(skipped, u.Name)
			continue
		}
		users = append(users, models.User{ID: id, Name: u.Name, Email: u.Email})
	}
	return users, skipped, nil
}

// DefaultBookings returns the embedded bookings.
func DefaultBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	if err := json.Unmarshal(bookingFixture, &bookings); err != nil {
		return nil, fmt.Errorf("decode booking fixture: %w", err)
	}
	return bookings, nil
}
