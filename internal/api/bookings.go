package api

import (
	"net/http"

	"roomadmin/internal/service"

	"github.com/go-chi/chi/v5"
)

type quoteResponse struct {
	RoomID string  `json:"roomId"`
	Days   int     `json:"days"`
	Total  float64 `json:"total"`
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	q, err := s.listQuery(r)
	if err != nil {
		writeFieldError(w, err)
		return
	}
	page, err := s.svc.Bookings.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var in service.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	booking, err := s.svc.Bookings.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	var in service.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	booking, err := s.svc.Bookings.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Bookings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", 1)
	if err != nil {
		writeFieldError(w, err)
		return
	}
	roomID := r.URL.Query().Get("room_id")
	total, err := s.svc.Bookings.Quote(r.Context(), roomID, days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{RoomID: roomID, Days: days, Total: total})
}
