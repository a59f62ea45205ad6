package models

// Placeholder is shown in place of a room or user that no longer exists.
const Placeholder = "-"

// MaxDaysStayed bounds a stay to ten years.
const MaxDaysStayed = 3650

// Booking represents a room stay starting at BookingDate for DaysStayed days.
type Booking struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	BookingDate Date   `json:"bookingDate"`
	DaysStayed  int    `json:"daysStayed"`
}

// EndDate is the first day after the stay.
func (b *Booking) EndDate() Date {
	return b.BookingDate.AddDays(b.DaysStayed)
}

// Interval returns the stay as a half-open range [BookingDate, EndDate).
func (b *Booking) Interval() Interval {
	return NewInterval(b.BookingDate, b.DaysStayed)
}

// OverlapsWith checks if this booking overlaps with another booking.
// Uses half-open interval [start, end) semantics - end boundary is exclusive,
// so a stay may begin on the day another one ends.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.Interval().Overlaps(other.Interval())
}

// ContainsDate checks if the booking covers a specific date.
func (b *Booking) ContainsDate(d Date) bool {
	return b.Interval().Contains(d)
}

// BookingView is a booking joined with the room and user it references.
type BookingView struct {
	Booking
	RoomName     string     `json:"roomName"`
	RoomCategory string     `json:"roomCategory"`
	RoomStatus   RoomStatus `json:"roomStatus"`
	RoomPrice    float64    `json:"roomPrice"`
	UserName     string     `json:"userName"`
	TotalPrice   float64    `json:"totalPrice"`
}
