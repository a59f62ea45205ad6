package aggregation

import (
	"fmt"
	"time"

	"roomadmin/internal/models"
)

// Period is the granularity of a revenue bucket.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q; expected daily, monthly or yearly", s)
	}
}

func inBucket(d, ref models.Date, period Period) bool {
	switch period {
	case PeriodDaily:
		return d.Year() == ref.Year() && d.Month() == ref.Month() && d.Day() == ref.Day()
	case PeriodMonthly:
		return d.Year() == ref.Year() && d.Month() == ref.Month()
	case PeriodYearly:
		return d.Year() == ref.Year()
	}
	return false
}

// RevenueForPeriod sums the total price of bookings starting in the calendar
// bucket of date.
func RevenueForPeriod(views []models.BookingView, date models.Date, period Period) float64 {
	var total float64
	for i := range views {
		if inBucket(views[i].BookingDate, date, period) {
			total += views[i].TotalPrice
		}
	}
	return total
}

// MonthlySeries returns one total per calendar month of year, January first.
func MonthlySeries(views []models.BookingView, year int) [12]float64 {
	var series [12]float64
	for i := range views {
		d := views[i].BookingDate
		if d.IsZero() || d.Year() != year {
			continue
		}
		series[d.Month()-1] += views[i].TotalPrice
	}
	return series
}

// MonthLabels are the chart labels of MonthlySeries.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Summary holds the dashboard figures.
type Summary struct {
	Date     string      `json:"date"`
	Daily    float64     `json:"daily"`
	Monthly  float64     `json:"monthly"`
	Yearly   float64     `json:"yearly"`
	Year     int         `json:"year"`
	Labels   [12]string  `json:"labels"`
	Series   [12]float64 `json:"series"`
	Bookings int         `json:"bookings"`
}

// Summarize computes the dashboard for the day of now.
func Summarize(views []models.BookingView, now time.Time) Summary {
	today := models.DateOf(now)
	return Summary{
		Date:     today.String(),
		Daily:    RevenueForPeriod(views, today, PeriodDaily),
		Monthly:  RevenueForPeriod(views, today, PeriodMonthly),
		Yearly:   RevenueForPeriod(views, today, PeriodYearly),
		Year:     today.Year(),
		Labels:   MonthLabels,
		Series:   MonthlySeries(views, today.Year()),
		Bookings: len(views),
	}
}
