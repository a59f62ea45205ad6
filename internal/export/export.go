// Package export builds the XLSX report of rooms, users, bookings and revenue.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/service"
)

// ExcelWriter writes data to Excel format.
type ExcelWriter interface {
	// AddSheet adds a new sheet and makes it current.
	AddSheet(name string) error
	// WriteHeader writes a bold header row to the current sheet.
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
	Save(w io.Writer) error
	SaveToFile(path string) error
	Close() error
}

// Notifier delivers a finished report.
type Notifier interface {
	SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error
}

// SnapshotSource reads a consistent copy of all collections.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (service.Snapshot, error)
}

// Sheet names.
const (
	SheetRooms    = "Rooms"
	SheetUsers    = "Users"
	SheetBookings = "Bookings"
	SheetRevenue  = "Revenue"
)

// MonthNames in Indonesian for file names.
var MonthNames = map[time.Month]string{
	time.January:   "Januari",
	time.February:  "Februari",
	time.March:     "Maret",
	time.April:     "April",
	time.May:       "Mei",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "Agustus",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Desember",
}

// GenerateFilename creates a filename like "Maret_2024.xlsx".
func GenerateFilename(t time.Time) string {
	return fmt.Sprintf("%s_%d.xlsx", MonthNames[t.Month()], t.Year())
}

// WriteReport fills w with one sheet per collection plus the monthly revenue of year.
func WriteReport(w ExcelWriter, snap service.Snapshot, year int) error {
	if err := w.AddSheet(SheetRooms); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"ID", "Name", "Capacity", "Category", "Price", "Status"}); err != nil {
		return err
	}
	for _, r := range snap.Rooms {
		if err := w.WriteRow([]interface{}{r.ID, r.Name, r.Capacity, r.Category, r.Price, string(r.Status)}); err != nil {
			return err
		}
	}

	if err := w.AddSheet(SheetUsers); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"ID", "Name", "Email"}); err != nil {
		return err
	}
	for _, u := range snap.Users {
		if err := w.WriteRow([]interface{}{u.ID, u.Name, u.Email}); err != nil {
			return err
		}
	}

	if err := w.AddSheet(SheetBookings); err != nil {
		return err
	}
	header := []string{"ID", "Room", "Category", "User", "Booking date", "Check-out", "Days", "Price per day", "Total"}
	if err := w.WriteHeader(header); err != nil {
		return err
	}
	for i := range snap.Views {
		v := &snap.Views[i]
		row := []interface{}{
			v.ID, v.RoomName, v.RoomCategory, v.UserName,
			v.BookingDate.String(), v.EndDate().String(),
			v.DaysStayed, v.RoomPrice, v.TotalPrice,
		}
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}

	if err := w.AddSheet(SheetRevenue); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"Month", fmt.Sprintf("Revenue %d", year)}); err != nil {
		return err
	}
	series := aggregation.MonthlySeries(snap.Views, year)
	var total float64
	for m, label := range aggregation.MonthLabels {
		total += series[m]
		if err := w.WriteRow([]interface{}{label, series[m]}); err != nil {
			return err
		}
	}
	return w.WriteRow([]interface{}{"Total", total})
}
