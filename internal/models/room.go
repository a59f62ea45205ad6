package models

import (
	"errors"
	"fmt"
)

// RoomStatus is the operator-maintained state of a room.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "Available"
	RoomOccupied  RoomStatus = "Occupied"
	RoomDraft     RoomStatus = "Draft"
)

// RoomStatuses lists every declared status.
var RoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomDraft}

var ErrUnknownStatus = errors.New("unknown room status")

// Valid reports whether s is one of the declared statuses.
func (s RoomStatus) Valid() bool {
	for _, known := range RoomStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseRoomStatus accepts only declared statuses.
func ParseRoomStatus(s string) (RoomStatus, error) {
	status := RoomStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// Room is a bookable room.
type Room struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Capacity int        `json:"capacity"`
	Category string     `json:"category"`
	Price    float64    `json:"price"`
	Status   RoomStatus `json:"status"`
}

// TransitionStatus is the only place a room changes status.
// Any declared status may follow any other; undeclared values are rejected.
func TransitionStatus(room *Room, to RoomStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	room.Status = to
	return nil
}

// IsBookable reports whether the room may take new bookings at all.
func (r *Room) IsBookable() bool {
	return r.Status == RoomAvailable
}
