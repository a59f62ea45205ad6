// Package aggregation derives revenue figures and joined booking records.
package aggregation

import (
	"roomadmin/internal/models"
)

// Join enriches each booking with the room and user it references.
// A booking whose room or user is gone is kept with a placeholder name and a
// zero price so booking counts stay correct.
func Join(bookings []models.Booking, rooms []models.Room, users []models.User) []models.BookingView {
	roomsByID := make(map[string]*models.Room, len(rooms))
	for i := range rooms {
		roomsByID[rooms[i].ID] = &rooms[i]
	}
	usersByID := make(map[string]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	views := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := models.BookingView{
			Booking:      b,
			RoomName:     models.Placeholder,
			RoomCategory: models.Placeholder,
			RoomStatus:   models.Placeholder,
			UserName:     models.Placeholder,
		}
		if room, ok := roomsByID[b.RoomID]; ok {
			view.RoomName = room.Name
			view.RoomCategory = room.Category
			view.RoomStatus = room.Status
			view.RoomPrice = room.Price
		}
		if user, ok := usersByID[b.UserID]; ok {
			view.UserName = user.Name
		}
		// Current room price, not the price at booking time.
		view.TotalPrice = view.RoomPrice * float64(b.DaysStayed)
		views = append(views, view)
	}
	return views
}

// BookingsOfUser returns the joined bookings made for userID.
func BookingsOfUser(views []models.BookingView, userID string) []models.BookingView {
	out := make([]models.BookingView, 0)
	for _, v := range views {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out
}

// Quote is the price of a stay in room for days; 0 when the room is unknown.
func Quote(rooms []models.Room, roomID string, days int) float64 {
	if days < 1 {
		return 0
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			return rooms[i].Price * float64(days)
		}
	}
	return 0
}
