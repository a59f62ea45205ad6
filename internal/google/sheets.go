// Package google mirrors bookings and the room schedule into a Google spreadsheet.
package google

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"roomadmin/internal/availability"
	"roomadmin/internal/events"
	"roomadmin/internal/models"
	"roomadmin/internal/service"

	"github.com/rs/zerolog"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet names in the mirrored spreadsheet.
const (
	BookingsSheet = "Bookings"
	ScheduleSheet = "Schedule"
)

// ScheduleDays is how many days the schedule sheet covers, starting today.
const ScheduleDays = 14

// SnapshotSource reads a consistent copy of all collections.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (service.Snapshot, error)
}

type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	source        SnapshotSource
	logger        *zerolog.Logger
	now           func() time.Time

	// syncMu keeps concurrent syncs from interleaving clear and update calls.
	syncMu sync.Mutex
}

// NewSheetsService authenticates with a service account key file.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string, source SnapshotSource, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := googleoauth.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewSheetsServiceWithOptions(ctx, spreadsheetID, source, logger, option.WithCredentials(creds))
}

// NewSheetsServiceWithOptions builds the service from raw client options.
func NewSheetsServiceWithOptions(ctx context.Context, spreadsheetID string, source SnapshotSource, logger *zerolog.Logger, opts ...option.ClientOption) (*SheetsService, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	l := logger.With().Str("component", "sheets").Logger()
	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		source:        source,
		logger:        &l,
		now:           time.Now,
	}, nil
}

// Sync rewrites both sheets from the current collections.
func (s *SheetsService) Sync(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read collections: %w", err)
	}

	if err := s.replace(ctx, BookingsSheet, bookingRows(snap.Views)); err != nil {
		return err
	}

	today := models.DateOf(s.now())
	bookings := make([]models.Booking, len(snap.Views))
	for i := range snap.Views {
		bookings[i] = snap.Views[i].Booking
	}
	if err := s.replace(ctx, ScheduleSheet, scheduleRows(snap.Rooms, bookings, userNames(snap.Users), today, ScheduleDays)); err != nil {
		return err
	}

	s.logger.Info().Int("bookings", len(snap.Views)).Msg("Spreadsheet synced")
	return nil
}

// HandleEvent is an events.EventHandler resyncing after any change.
func (s *SheetsService) HandleEvent(e events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.Sync(ctx); err != nil {
		return fmt.Errorf("sync after %s: %w", e.Type, err)
	}
	return nil
}

func (s *SheetsService) replace(ctx context.Context, sheet string, rows [][]interface{}) error {
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, sheet, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	vr := &sheets.ValueRange{Values: rows}
	if _, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, sheet+"!A1", vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}

var bookingHeader = []interface{}{"ID", "Room ID", "Room", "User ID", "User", "Check-in", "Check-out", "Days", "Total"}

func bookingRows(views []models.BookingView) [][]interface{} {
	rows := make([][]interface{}, 0, len(views)+1)
	rows = append(rows, bookingHeader)
	for i := range views {
		rows = append(rows, bookingRowValues(&views[i]))
	}
	return rows
}

func bookingRowValues(v *models.BookingView) []interface{} {
	return []interface{}{
		v.ID,
		v.RoomID,
		v.RoomName,
		v.UserID,
		v.UserName,
		v.BookingDate.String(),
		v.EndDate().String(),
		v.DaysStayed,
		v.TotalPrice,
	}
}

// prepareDateHeaders returns "Room" followed by one dd.mm column per day.
func prepareDateHeaders(start models.Date, days int) []interface{} {
	headers := make([]interface{}, 0, days+1)
	headers = append(headers, "Room")
	for i := 0; i < days; i++ {
		headers = append(headers, start.AddDays(i).Format("02.01"))
	}
	return headers
}

func scheduleRows(rooms []models.Room, bookings []models.Booking, names map[string]string, start models.Date, days int) [][]interface{} {
	rows := make([][]interface{}, 0, len(rooms)+1)
	rows = append(rows, prepareDateHeaders(start, days))
	for _, room := range rooms {
		row := make([]interface{}, 0, days+1)
		row = append(row, room.Name)
		for _, day := range availability.Calendar(room, bookings, start, start.AddDays(days-1)) {
			row = append(row, formatScheduleCell(day, bookings, names))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatScheduleCell(day availability.DayAvailability, bookings []models.Booking, names map[string]string) string {
	switch {
	case day.Available:
		return ""
	case day.Reason == availability.ReasonBooked:
		for i := range bookings {
			if bookings[i].ID == day.BookingID {
				if name, ok := names[bookings[i].UserID]; ok {
					return name
				}
			}
		}
		return models.Placeholder
	default:
		return day.Reason
	}
}

func userNames(users []models.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}
