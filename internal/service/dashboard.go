package service

import (
	"context"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/models"
)

type DashboardService struct {
	*core
}

// Series is the revenue chart of one year.
type Series struct {
	Year   int         `json:"year"`
	Labels [12]string  `json:"labels"`
	Values [12]float64 `json:"values"`
}

// Snapshot is everything a report needs, read at one point in time.
type Snapshot struct {
	Rooms []models.Room
	Users []models.User
	Views []models.BookingView
}

// Summary computes the dashboard for today.
func (s *DashboardService) Summary(ctx context.Context) (aggregation.Summary, error) {
	views, err := s.views(ctx)
	if err != nil {
		return aggregation.Summary{}, err
	}
	return aggregation.Summarize(views, s.now()), nil
}

func (s *DashboardService) Series(ctx context.Context, year int) (Series, error) {
	views, err := s.views(ctx)
	if err != nil {
		return Series{}, err
	}
	return Series{
		Year:   year,
		Labels: aggregation.MonthLabels,
		Values: aggregation.MonthlySeries(views, year),
	}, nil
}

func (s *DashboardService) Revenue(ctx context.Context, date models.Date, period aggregation.Period) (float64, error) {
	views, err := s.views(ctx)
	if err != nil {
		return 0, err
	}
	return aggregation.RevenueForPeriod(views, date, period), nil
}

// Snapshot reads all collections under the write lock so they are consistent.
func (s *DashboardService) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	bookings, err := s.bookings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Rooms: rooms,
		Users: users,
		Views: aggregation.Join(bookings, rooms, users),
	}, nil
}

// Today is the current local date.
func (s *DashboardService) Today() models.Date {
	return models.DateOf(s.now())
}
