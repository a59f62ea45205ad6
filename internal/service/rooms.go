package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"roomadmin/internal/availability"
	"roomadmin/internal/events"
	"roomadmin/internal/listing"
	"roomadmin/internal/models"

	"github.com/google/uuid"
)

var roomFields = listing.Fields[models.Room]{
	"id":       func(r models.Room) any { return r.ID },
	"name":     func(r models.Room) any { return r.Name },
	"capacity": func(r models.Room) any { return r.Capacity },
	"category": func(r models.Room) any { return r.Category },
	"price":    func(r models.Room) any { return r.Price },
	"status":   func(r models.Room) any { return string(r.Status) },
}

type RoomService struct {
	*core
}

func (s *RoomService) List(ctx context.Context, q listing.Query) (listing.Page[models.Room], error) {
	rooms, err := s.rooms(ctx)
	if err != nil {
		return listing.Page[models.Room]{}, err
	}
	return applyQuery(rooms, roomFields, q)
}

func (s *RoomService) Get(ctx context.Context, id string) (models.Room, error) {
	rooms, err := s.rooms(ctx)
	if err != nil {
		return models.Room{}, err
	}
	i := indexRoom(rooms, id)
	if i < 0 {
		return models.Room{}, notFound("room", id)
	}
	return rooms[i], nil
}

// Create adds a room. New rooms start as Draft.
func (s *RoomService) Create(ctx context.Context, in RoomInput) (models.Room, error) {
	in.normalize()
	ie := newInputError()
	check(s.validate, &in, ie)
	if ie.fieldsCount() > 0 {
		return models.Room{}, s.reject("rooms", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms(ctx)
	if err != nil {
		return models.Room{}, err
	}

	room := models.Room{
		ID:       uniqueRoomID(rooms),
		Name:     in.Name,
		Capacity: in.Capacity,
		Category: in.Category,
		Price:    in.Price,
		Status:   models.RoomDraft,
	}
	if err := s.putRooms(ctx, append(rooms, room)); err != nil {
		return models.Room{}, err
	}

	s.logger.Info().Str("room_id", room.ID).Str("name", room.Name).Msg("Room created")
	s.committed("rooms", "create", events.RoomCreated, room)
	return room, nil
}

// Update replaces the editable fields; id and status are kept.
func (s *RoomService) Update(ctx context.Context, id string, in RoomInput) (models.Room, error) {
	in.normalize()
	ie := newInputError()
	check(s.validate, &in, ie)
	if ie.fieldsCount() > 0 {
		return models.Room{}, s.reject("rooms", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms(ctx)
	if err != nil {
		return models.Room{}, err
	}
	i := indexRoom(rooms, id)
	if i < 0 {
		return models.Room{}, notFound("room", id)
	}

	rooms[i].Name = in.Name
	rooms[i].Capacity = in.Capacity
	rooms[i].Category = in.Category
	rooms[i].Price = in.Price
	if err := s.putRooms(ctx, rooms); err != nil {
		return models.Room{}, err
	}

	s.logger.Info().Str("room_id", id).Msg("Room updated")
	s.committed("rooms", "update", events.RoomUpdated, rooms[i])
	return rooms[i], nil
}

// SetStatus moves a room to one of the declared statuses.
func (s *RoomService) SetStatus(ctx context.Context, id, status string) (models.Room, error) {
	to, err := models.ParseRoomStatus(status)
	if err != nil {
		ie := newInputError().withCause(ErrInvalidStatus)
		ie.addError("status", fmt.Sprintf("must be one of %s", statusList()))
		return models.Room{}, s.reject("rooms", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms(ctx)
	if err != nil {
		return models.Room{}, err
	}
	i := indexRoom(rooms, id)
	if i < 0 {
		return models.Room{}, notFound("room", id)
	}

	from := rooms[i].Status
	if err := models.TransitionStatus(&rooms[i], to); err != nil {
		return models.Room{}, errors.Join(ErrInvalidStatus, err)
	}
	if err := s.putRooms(ctx, rooms); err != nil {
		return models.Room{}, err
	}

	s.logger.Info().Str("room_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Room status changed")
	s.committed("rooms", "status", events.RoomStatusChanged, rooms[i])
	return rooms[i], nil
}

// Delete removes a room. Its bookings are kept and show placeholders.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms(ctx)
	if err != nil {
		return err
	}
	i := indexRoom(rooms, id)
	if i < 0 {
		return notFound("room", id)
	}
	removed := rooms[i]
	if err := s.putRooms(ctx, slices.Delete(rooms, i, i+1)); err != nil {
		return err
	}

	s.logger.Info().Str("room_id", id).Msg("Room deleted")
	s.committed("rooms", "delete", events.RoomDeleted, removed)
	return nil
}

// Calendar reports per-day availability of a room for days starting at from.
func (s *RoomService) Calendar(ctx context.Context, id string, from models.Date, days int) ([]availability.DayAvailability, error) {
	if days < 1 || days > availability.MaxCalendarDays {
		ie := newInputError()
		ie.addError("days", fmt.Sprintf("must be between 1 and %d", availability.MaxCalendarDays))
		return nil, ie
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Calendar(room, bookings, from, from.AddDays(days-1)), nil
}

func indexRoom(rooms []models.Room, id string) int {
	return slices.IndexFunc(rooms, func(r models.Room) bool { return r.ID == id })
}

func statusList() string {
	names := make([]string, 0, len(models.RoomStatuses))
	for _, st := range models.RoomStatuses {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

// newRoomID returns ROOM- followed by nine upper-case base-36 characters.
func newRoomID() string {
	u := uuid.New()
	s := strings.ToUpper(strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36))
	if len(s) < 9 {
		s = strings.Repeat("0", 9-len(s)) + s
	}
	return "ROOM-" + s[len(s)-9:]
}

func uniqueRoomID(rooms []models.Room) string {
	for {
		id := newRoomID()
		if indexRoom(rooms, id) < 0 {
			return id
		}
	}
}

func applyQuery[T any](records []T, fields listing.Fields[T], q listing.Query) (listing.Page[T], error) {
	page, err := listing.Apply(records, fields, q)
	if errors.Is(err, listing.ErrUnknownSortKey) {
		ie := newInputError().withCause(err)
		ie.addError("sort", fmt.Sprintf("unknown column %q", q.Sort.Key))
		return listing.Page[T]{}, ie
	}
	return page, err
}
