package api

import (
	"net/http"

	"roomadmin/internal/service"

	"github.com/go-chi/chi/v5"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	q, err := s.listQuery(r)
	if err != nil {
		writeFieldError(w, err)
		return
	}
	page, err := s.svc.Rooms.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.svc.Rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var in service.RoomInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room, err := s.svc.Rooms.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) updateRoom(w http.ResponseWriter, r *http.Request) {
	var in service.RoomInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room, err := s.svc.Rooms.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) setRoomStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room, err := s.svc.Rooms.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Rooms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// availableRooms backs the room picker of the booking form.
func (s *Server) availableRooms(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.svc.Dashboard.Today())
	if err != nil {
		writeFieldError(w, err)
		return
	}
	days, err := intParam(r, "days", 1)
	if err != nil {
		writeFieldError(w, err)
		return
	}
	rooms, err := s.svc.Bookings.AvailableRooms(r.Context(), date, days, r.URL.Query().Get("exclude"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) roomCalendar(w http.ResponseWriter, r *http.Request) {
	from, err := dateParam(r, "from", s.svc.Dashboard.Today())
	if err != nil {
		writeFieldError(w, err)
		return
	}
	days, err := intParam(r, "days", 30)
	if err != nil {
		writeFieldError(w, err)
		return
	}
	cal, err := s.svc.Rooms.Calendar(r.Context(), chi.URLParam(r, "id"), from, days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}
