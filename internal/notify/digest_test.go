package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"roomadmin/internal/models"
	"roomadmin/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snap service.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (service.Snapshot, error) { return s.snap, s.err }

type recordingSender struct {
	texts []string
}

func (r *recordingSender) SendText(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

func digestViews() []models.BookingView {
	return []models.BookingView{
		{
			Booking:  models.Booking{ID: "B1", BookingDate: models.NewDate(2024, 3, 10), DaysStayed: 3},
			RoomName: "Room A", UserName: "John Doe",
		},
		{
			Booking:  models.Booking{ID: "B2", BookingDate: models.NewDate(2024, 3, 11), DaysStayed: 2},
			RoomName: "Room B", UserName: "Jane Smith",
		},
	}
}

func TestFormatDigest(t *testing.T) {
	text, ok := FormatDigest(digestViews(), models.NewDate(2024, 3, 13))
	require.True(t, ok)
	assert.Contains(t, text, "Tomorrow, 2024-03-13")
	assert.Contains(t, text, "Check-in (0):\nnone")
	assert.Contains(t, text, "Check-out (2):\n- Room A, John Doe (3 days)\n- Room B, Jane Smith (2 days)")

	text, ok = FormatDigest(digestViews(), models.NewDate(2024, 3, 11))
	require.True(t, ok)
	assert.Contains(t, text, "Check-in (1):\n- Room B, Jane Smith (2 days)")

	_, ok = FormatDigest(digestViews(), models.NewDate(2024, 3, 12))
	assert.False(t, ok)
}

func TestDigestRunOnce(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &recordingSender{}
	d := NewDigest(DigestConfig{Hour: 9}, staticSource{snap: service.Snapshot{Views: digestViews()}}, sender, &logger)
	d.now = func() time.Time { return time.Date(2024, 3, 9, 9, 0, 0, 0, time.Local) }

	require.NoError(t, d.RunOnce(context.Background()))
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "2024-03-10")

	// Same day again.
	require.NoError(t, d.RunOnce(context.Background()))
	assert.Len(t, sender.texts, 1)

	d.now = func() time.Time { return time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local) }
	require.NoError(t, d.RunOnce(context.Background()))
	assert.Len(t, sender.texts, 1, "nothing starts or ends on 2024-03-12")
}

type flakySender struct {
	failures int
	texts    []string
}

func (f *flakySender) SendText(_ context.Context, text string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("telegram unreachable")
	}
	f.texts = append(f.texts, text)
	return nil
}

func TestDigestFailedSendRetriesSameDay(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &flakySender{failures: 1}
	d := NewDigest(DigestConfig{Hour: 9}, staticSource{snap: service.Snapshot{Views: digestViews()}}, sender, &logger)
	d.now = func() time.Time { return time.Date(2024, 3, 9, 9, 0, 0, 0, time.Local) }

	require.Error(t, d.RunOnce(context.Background()))
	assert.Empty(t, sender.texts)

	d.now = func() time.Time { return time.Date(2024, 3, 9, 9, 10, 0, 0, time.Local) }
	require.NoError(t, d.RunOnce(context.Background()))
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "2024-03-10")

	require.NoError(t, d.RunOnce(context.Background()))
	assert.Len(t, sender.texts, 1)
}

func TestDigestUntilRetry(t *testing.T) {
	logger := zerolog.New(io.Discard)
	d := NewDigest(DigestConfig{Hour: 9, Location: time.UTC}, staticSource{}, &recordingSender{}, &logger)

	d.now = func() time.Time { return time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC) }
	wait, ok := d.untilRetry()
	assert.True(t, ok)
	assert.Equal(t, DigestRetryDelay, wait)

	d.now = func() time.Time { return time.Date(2024, 3, 9, 23, 55, 0, 0, time.UTC) }
	_, ok = d.untilRetry()
	assert.False(t, ok)
}

func TestDigestSourceError(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &recordingSender{}
	d := NewDigest(DigestConfig{Hour: 25}, staticSource{err: errors.New("store down")}, sender, &logger)

	assert.Equal(t, 9, d.config.Hour)
	assert.Error(t, d.RunOnce(context.Background()))
	assert.Empty(t, sender.texts)
	assert.Empty(t, d.lastRunDate)
}

func TestNextRun(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"BeforeHour", time.Date(2024, 3, 9, 7, 30, 0, 0, loc), time.Date(2024, 3, 9, 9, 0, 0, 0, loc)},
		{"AtHour", time.Date(2024, 3, 9, 9, 0, 0, 0, loc), time.Date(2024, 3, 10, 9, 0, 0, 0, loc)},
		{"MonthEnd", time.Date(2024, 3, 31, 22, 0, 0, 0, loc), time.Date(2024, 4, 1, 9, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRun(tt.now, 9))
		})
	}
}
