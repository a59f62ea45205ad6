package service

import (
	"context"
	"fmt"
	"slices"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/availability"
	"roomadmin/internal/events"
	"roomadmin/internal/listing"
	"roomadmin/internal/metrics"
	"roomadmin/internal/models"

	"github.com/google/uuid"
)

var bookingFields = listing.Fields[models.BookingView]{
	"id":           func(v models.BookingView) any { return v.ID },
	"roomName":     func(v models.BookingView) any { return v.RoomName },
	"roomCategory": func(v models.BookingView) any { return v.RoomCategory },
	"userName":     func(v models.BookingView) any { return v.UserName },
	"bookingDate":  func(v models.BookingView) any { return v.BookingDate },
	"daysStayed":   func(v models.BookingView) any { return v.DaysStayed },
	"totalPrice":   func(v models.BookingView) any { return v.TotalPrice },
}

type BookingService struct {
	*core
}

// List pages the joined booking view.
func (s *BookingService) List(ctx context.Context, q listing.Query) (listing.Page[models.BookingView], error) {
	views, err := s.views(ctx)
	if err != nil {
		return listing.Page[models.BookingView]{}, err
	}
	return applyQuery(views, bookingFields, q)
}

func (s *BookingService) Get(ctx context.Context, id string) (models.BookingView, error) {
	views, err := s.views(ctx)
	if err != nil {
		return models.BookingView{}, err
	}
	i := slices.IndexFunc(views, func(v models.BookingView) bool { return v.ID == id })
	if i < 0 {
		return models.BookingView{}, notFound("booking", id)
	}
	return views[i], nil
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) (models.Booking, error) {
	return s.save(ctx, "", in)
}

// Update rewrites a booking. The booking itself does not block its new dates.
func (s *BookingService) Update(ctx context.Context, id string, in BookingInput) (models.Booking, error) {
	return s.save(ctx, id, in)
}

// save creates a booking when id is empty and updates booking id otherwise.
func (s *BookingService) save(ctx context.Context, id string, in BookingInput) (models.Booking, error) {
	in.normalize()
	ie := newInputError()
	check(s.validate, &in, ie)

	var start models.Date
	if in.BookingDate != "" {
		d, err := models.ParseDate(in.BookingDate)
		if err != nil {
			ie.addError("bookingDate", "must be a date in YYYY-MM-DD form")
		}
		start = d
	}
	if ie.fieldsCount() > 0 {
		return models.Booking{}, s.reject("bookings", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.bookings(ctx)
	if err != nil {
		return models.Booking{}, err
	}
	rooms, err := s.rooms(ctx)
	if err != nil {
		return models.Booking{}, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return models.Booking{}, err
	}

	idx := -1
	if id != "" {
		idx = indexBooking(bookings, id)
		if idx < 0 {
			return models.Booking{}, notFound("booking", id)
		}
	}

	ri := indexRoom(rooms, in.RoomID)
	if ri < 0 {
		ie.addError("roomId", "unknown room")
	}
	if indexUser(users, in.UserID) < 0 {
		ie.addError("userId", "unknown user")
	}
	if ie.fieldsCount() > 0 {
		return models.Booking{}, s.reject("bookings", ie)
	}

	room := rooms[ri]
	if !availability.IsRoomAvailable(room.ID, start, in.DaysStayed, bookings, room.Status, id) {
		metrics.IncUnavailable()
		s.logger.Info().
			Str("room_id", room.ID).
			Str("date", start.String()).
			Int("days", in.DaysStayed).
			Msg("Booking rejected, room not available")
		return models.Booking{}, fmt.Errorf("room %q from %s for %d days: %w", room.ID, start, in.DaysStayed, ErrNotAvailable)
	}

	booking := models.Booking{
		ID:          id,
		RoomID:      room.ID,
		UserID:      in.UserID,
		BookingDate: start,
		DaysStayed:  in.DaysStayed,
	}

	action, eventType := "update", events.BookingUpdated
	if idx < 0 {
		booking.ID, err = newBookingID()
		if err != nil {
			return models.Booking{}, err
		}
		bookings = append(bookings, booking)
		action, eventType = "create", events.BookingCreated
	} else {
		bookings[idx] = booking
	}

	if err := s.putBookings(ctx, bookings); err != nil {
		return models.Booking{}, err
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("user_id", booking.UserID).
		Str("action", action).
		Msg("Booking saved")
	s.committed("bookings", action, eventType, booking)
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.bookings(ctx)
	if err != nil {
		return err
	}
	i := indexBooking(bookings, id)
	if i < 0 {
		return notFound("booking", id)
	}
	removed := bookings[i]
	if err := s.putBookings(ctx, slices.Delete(bookings, i, i+1)); err != nil {
		return err
	}

	s.logger.Info().Str("booking_id", id).Msg("Booking deleted")
	s.committed("bookings", "delete", events.BookingDeleted, removed)
	return nil
}

// AvailableRooms lists the rooms the booking form may offer for the range.
// excludeID names the booking being edited, if any.
func (s *BookingService) AvailableRooms(ctx context.Context, start models.Date, days int, excludeID string) ([]models.Room, error) {
	if err := checkDays(days); err != nil {
		return nil, err
	}
	rooms, err := s.rooms(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings(ctx)
	if err != nil {
		return nil, err
	}
	return availability.AvailableRooms(rooms, bookings, start, days, excludeID), nil
}

// Quote is the total price the booking form shows while it is filled in.
func (s *BookingService) Quote(ctx context.Context, roomID string, days int) (float64, error) {
	if days > models.MaxDaysStayed {
		return 0, checkDays(days)
	}
	rooms, err := s.rooms(ctx)
	if err != nil {
		return 0, err
	}
	return aggregation.Quote(rooms, roomID, days), nil
}

func checkDays(days int) error {
	if days < 1 || days > models.MaxDaysStayed {
		ie := newInputError()
		ie.addError("days", fmt.Sprintf("must be between 1 and %d", models.MaxDaysStayed))
		return ie
	}
	return nil
}

func indexBooking(bookings []models.Booking, id string) int {
	return slices.IndexFunc(bookings, func(b models.Booking) bool { return b.ID == id })
}

func newBookingID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate booking id: %w", err)
	}
	return id.String(), nil
}
