package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/models"
	"roomadmin/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type staticSource struct {
	snap service.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (service.Snapshot, error) {
	return s.snap, s.err
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error {
	b, _ := io.ReadAll(data)
	return m.Called(filename, len(b) > 0, caption).Error(0)
}

func fixture() service.Snapshot {
	rooms := []models.Room{
		{ID: "1", Name: "Room A", Capacity: 2, Category: "Deluxe", Price: 500000, Status: models.RoomAvailable},
	}
	users := []models.User{{ID: "2000-JO-DO-10-4-7", Name: "John Doe", Email: "john.doe@example.com"}}
	bookings := []models.Booking{
		{ID: "b1", RoomID: "1", UserID: "2000-JO-DO-10-4-7", BookingDate: models.NewDate(2024, 3, 10), DaysStayed: 3},
		{ID: "b2", RoomID: "9", UserID: "2000-JO-DO-10-4-7", BookingDate: models.NewDate(2024, 5, 1), DaysStayed: 1},
	}
	return service.Snapshot{Rooms: rooms, Users: users, Views: aggregation.Join(bookings, rooms, users)}
}

func TestGenerateFilename(t *testing.T) {
	assert.Equal(t, "Maret_2024.xlsx", GenerateFilename(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Desember_2023.xlsx", GenerateFilename(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestServiceWrite(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := NewService(Config{}, staticSource{snap: fixture()}, nil, nil, &logger)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local) }

	var buf bytes.Buffer
	require.NoError(t, svc.Write(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetRooms, SheetUsers, SheetBookings, SheetRevenue}, f.GetSheetList())

	rows, err := f.GetRows(SheetBookings)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Room", rows[0][1])
	assert.Equal(t, []string{"b1", "Room A", "Deluxe", "John Doe", "2024-03-10", "2024-03-13", "3", "500000", "1500000"}, rows[1])
	assert.Equal(t, models.Placeholder, rows[2][1])

	revenue, err := f.GetRows(SheetRevenue)
	require.NoError(t, err)
	require.Len(t, revenue, 14)
	assert.Equal(t, []string{"Mar", "1500000"}, revenue[3])
	assert.Equal(t, []string{"Total", "1500000"}, revenue[13])
}

func TestServiceRunExport(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	notifier := new(mockNotifier)
	svc := NewService(Config{Dir: dir, Caption: "report"}, staticSource{snap: fixture()}, nil, notifier, &logger)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 0, 1, 0, 0, time.Local) }

	notifier.On("SendDocument", "Maret_2024.xlsx", true, "report").Return(nil).Once()

	path, err := svc.RunExport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Maret_2024.xlsx"), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	notifier.AssertExpectations(t)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 1, 0, 0, time.Local), svc.nextFirstOfMonth())
}

func TestServiceSourceError(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := NewService(Config{}, staticSource{err: errors.New("store down")}, nil, nil, &logger)

	_, err := svc.RunExport(context.Background())
	assert.Error(t, err)
}
