// Package availability decides which rooms can take a stay for a given range.
package availability

import (
	"roomadmin/internal/models"
)

// MaxCalendarDays is the maximum number of days allowed in a calendar request.
const MaxCalendarDays = 90

// Reasons reported for unavailable days.
const (
	ReasonBooked   = "booked"
	ReasonOccupied = "occupied"
	ReasonDraft    = "draft"
)

// IsRoomAvailable reports whether a room in the given status may be booked for
// [start, start+days). Bookings of other rooms and the booking identified by
// excludeBookingID (the one being edited) are ignored.
func IsRoomAvailable(
	roomID string,
	start models.Date,
	days int,
	bookings []models.Booking,
	status models.RoomStatus,
	excludeBookingID string,
) bool {
	if status != models.RoomAvailable {
		return false
	}

	candidate := models.NewInterval(start, days)
	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != roomID {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			return false
		}
	}
	return true
}

// AvailableRooms returns the rooms a stay of days starting at start may be placed in,
// preserving the order of rooms.
func AvailableRooms(
	rooms []models.Room,
	bookings []models.Booking,
	start models.Date,
	days int,
	excludeBookingID string,
) []models.Room {
	available := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == models.RoomDraft {
			continue
		}
		if IsRoomAvailable(room.ID, start, days, bookings, room.Status, excludeBookingID) {
			available = append(available, room)
		}
	}
	return available
}

// DayAvailability represents availability of a room for a single date.
type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// Calendar lists availability of room for every day in [from, to].
func Calendar(room models.Room, bookings []models.Booking, from, to models.Date) []DayAvailability {
	days := make([]DayAvailability, 0)
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		entry := DayAvailability{Date: d.String(), Available: true}

		switch room.Status {
		case models.RoomDraft:
			entry.Available, entry.Reason = false, ReasonDraft
		case models.RoomOccupied:
			entry.Available, entry.Reason = false, ReasonOccupied
		default:
			for i := range bookings {
				if bookings[i].RoomID == room.ID && bookings[i].ContainsDate(d) {
					entry.Available, entry.Reason, entry.BookingID = false, ReasonBooked, bookings[i].ID
					break
				}
			}
		}

		days = append(days, entry)
	}
	return days
}
