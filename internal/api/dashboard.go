package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"roomadmin/internal/aggregation"
)

type revenueResponse struct {
	Date   string             `json:"date"`
	Period aggregation.Period `json:"period"`
	Total  float64            `json:"total"`
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Dashboard.Summary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", s.svc.Dashboard.Today().Year())
	if err != nil {
		writeFieldError(w, err)
		return
	}
	if year < 1 || year > 9999 {
		badRequest(w, "year", "must be between 1 and 9999")
		return
	}
	series, err := s.svc.Dashboard.Series(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) revenue(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.svc.Dashboard.Today())
	if err != nil {
		writeFieldError(w, err)
		return
	}
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(aggregation.PeriodDaily)
	}
	period, err := aggregation.ParsePeriod(raw)
	if err != nil {
		badRequest(w, "period", err.Error())
		return
	}
	total, err := s.svc.Dashboard.Revenue(r.Context(), date, period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revenueResponse{Date: date.String(), Period: period, Total: total})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotFound, "export is disabled")
		return
	}
	var buf bytes.Buffer
	if err := s.exporter.Write(r.Context(), &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exporter.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
