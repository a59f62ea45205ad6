package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"roomadmin/internal/listing"
	"roomadmin/internal/models"
)

// fieldError reports which query parameter was rejected.
type fieldError struct {
	field string
	msg   string
}

func (e *fieldError) Error() string { return e.field + ": " + e.msg }

// listQuery reads q, sort, dir, page and page_size.
func (s *Server) listQuery(r *http.Request) (listing.Query, error) {
	v := r.URL.Query()
	q := listing.Query{
		Search:   v.Get("q"),
		Page:     1,
		PageSize: s.opts.PageSize,
	}
	if q.PageSize <= 0 {
		q.PageSize = listing.DefaultPageSize
	}

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, &fieldError{"page", "must be a positive integer"}
		}
		q.Page = n
	}
	if raw := v.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > listing.MaxPageSize {
			return q, &fieldError{"page_size", fmt.Sprintf("must be between 1 and %d", listing.MaxPageSize)}
		}
		q.PageSize = n
	}

	dir, err := listing.ParseDirection(v.Get("dir"))
	if err != nil {
		return q, &fieldError{"dir", err.Error()}
	}
	key := strings.TrimSpace(v.Get("sort"))
	if key != "" {
		if dir == listing.Unsorted && v.Get("dir") == "" {
			dir = listing.Ascending
		}
		q.Sort = listing.SortState{Key: key, Direction: dir}
	}
	return q, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &fieldError{name, "must be an integer"}
	}
	return n, nil
}

func dateParam(r *http.Request, name string, def models.Date) (models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, &fieldError{name, err.Error()}
	}
	return d, nil
}

func writeFieldError(w http.ResponseWriter, err error) {
	if fe, ok := err.(*fieldError); ok {
		badRequest(w, fe.field, fe.msg)
		return
	}
	badRequest(w, "query", err.Error())
}
