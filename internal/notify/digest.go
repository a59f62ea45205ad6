package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"roomadmin/internal/models"
	"roomadmin/internal/service"

	"github.com/rs/zerolog"
)

// TextSender delivers a plain text message.
type TextSender interface {
	SendText(ctx context.Context, text string) error
}

// SnapshotSource reads a consistent copy of all collections.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (service.Snapshot, error)
}

// DigestRetryDelay is the wait before a failed digest is tried again the same day.
const DigestRetryDelay = 10 * time.Minute

// DigestConfig schedules the daily arrivals and departures message.
type DigestConfig struct {
	// Hour (0-23) in Location when the digest for the next day is sent.
	Hour     int
	Location *time.Location
}

// Digest sends managers the list of tomorrow's check-ins and check-outs once a day.
type Digest struct {
	config DigestConfig
	source SnapshotSource
	sender TextSender
	logger *zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastRunDate string
}

func NewDigest(cfg DigestConfig, source SnapshotSource, sender TextSender, logger *zerolog.Logger) *Digest {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Hour < 0 || cfg.Hour > 23 {
		cfg.Hour = 9
	}
	l := logger.With().Str("component", "digest").Logger()
	return &Digest{
		config: cfg,
		source: source,
		sender: sender,
		logger: &l,
		now:    time.Now,
	}
}

// Start runs the digest every day at the configured hour until ctx is done.
func (d *Digest) Start(ctx context.Context) {
	timer := time.NewTimer(d.untilNextRun())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			wait := d.untilNextRun()
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error().Err(err).Msg("Daily digest failed")
				if retry, ok := d.untilRetry(); ok {
					wait = retry
				}
			}
			timer.Reset(wait)
		}
	}
}

// RunOnce sends the digest for tomorrow. Once it has been sent, or there was
// nothing to report, further calls on the same day are no-ops. A failed run
// leaves the day open for a retry.
func (d *Digest) RunOnce(ctx context.Context) error {
	now := d.now().In(d.config.Location)
	today := now.Format(models.DateLayout)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastRunDate == today {
		return nil
	}

	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read collections: %w", err)
	}

	tomorrow := models.NewDate(now.Year(), now.Month(), now.Day()+1)
	text, ok := FormatDigest(snap.Views, tomorrow)
	if !ok {
		d.logger.Debug().Str("date", tomorrow.String()).Msg("Nothing to report")
		d.lastRunDate = today
		return nil
	}
	if err := d.sender.SendText(ctx, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	d.lastRunDate = today
	d.logger.Info().Str("date", tomorrow.String()).Msg("Daily digest sent")
	return nil
}

// untilRetry is the wait before retrying a failed run, if the retry still
// falls on the same day.
func (d *Digest) untilRetry() (time.Duration, bool) {
	now := d.now().In(d.config.Location)
	if now.Add(DigestRetryDelay).YearDay() != now.YearDay() {
		return 0, false
	}
	return DigestRetryDelay, true
}

func (d *Digest) untilNextRun() time.Duration {
	now := d.now().In(d.config.Location)
	return nextRun(now, d.config.Hour).Sub(now)
}

func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}

// FormatDigest lists bookings starting and ending on day. ok is false when there are none.
func FormatDigest(views []models.BookingView, day models.Date) (text string, ok bool) {
	var arrivals, departures []string
	for i := range views {
		v := &views[i]
		line := fmt.Sprintf("- %s, %s (%d days)", v.RoomName, v.UserName, v.DaysStayed)
		if v.BookingDate.Equal(day.Time) {
			arrivals = append(arrivals, line)
		}
		if v.EndDate().Equal(day.Time) {
			departures = append(departures, line)
		}
	}
	if len(arrivals) == 0 && len(departures) == 0 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tomorrow, %s", day)
	section := func(title string, lines []string) {
		fmt.Fprintf(&b, "\n\n%s (%d):", title, len(lines))
		if len(lines) == 0 {
			b.WriteString("\nnone")
			return
		}
		for _, l := range lines {
			b.WriteString("\n" + l)
		}
	}
	section("Check-in", arrivals)
	section("Check-out", departures)
	return b.String(), true
}
