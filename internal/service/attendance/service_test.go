package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository enforces the (user_id, date) uniqueness like the real stores.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	seq     int

	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
	// onDuplicate runs with the lock held when Create hits the unique key.
	onDuplicate func()
	failWith    error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]attendance.Attendance)}
}

func dayKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (m *memoryRepository) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return attendance.Attendance{}, m.failWith
	}
	key := dayKey(a.UserID, a.Date)
	if _, exists := m.records[key]; exists {
		if m.onDuplicate != nil {
			m.onDuplicate()
		}
		return attendance.Attendance{}, attendance.ErrDuplicateDay
	}
	m.seq++
	a.ID = fmt.Sprintf("att-%d", m.seq)
	m.records[key] = a
	return a, nil
}

func (m *memoryRepository) GetByUserAndDate(_ context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return attendance.Attendance{}, m.failWith
	}
	a, ok := m.records[dayKey(userID, date)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (m *memoryRepository) Close(_ context.Context, id string, clockOut time.Time, hoursWorked float64) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, a := range m.records {
		if a.ID != id {
			continue
		}
		if a.ClockOut != nil {
			return attendance.Attendance{}, attendance.ErrAlreadyCompleted
		}
		a.ClockOut = &clockOut
		a.HoursWorked = &hoursWorked
		a.UpdatedAt = clockOut
		m.records[key] = a
		return a, nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memoryRepository) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range m.records {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.StartDay != nil && a.Date.Before(*filter.StartDay) {
			continue
		}
		if filter.EndDay != nil && a.Date.After(*filter.EndDay) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ClockIn.After(out[j].ClockIn)
	})
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(repo attendance.AttendanceRepository, loc *time.Location, start time.Time) (*AttendanceServiceImpl, *clock) {
	c := &clock{t: start}
	svc := NewAttendanceService(repo, loc).(*AttendanceServiceImpl)
	svc.now = c.now
	return svc, c
}

var employee = auth.Identity{ID: "u-1", Email: "ana@example.com", Roles: []string{"EMPLOYEE"}}

func TestClockInClockOut_FullDay(t *testing.T) {
	// Arrange
	repo := newMemoryRepository()
	svc, c := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Act
	in, err := svc.ClockIn(ctx, "u-1")
	require.NoError(t, err)
	c.t = time.Date(2025, 3, 5, 17, 30, 0, 0, time.UTC)
	out, err := svc.ClockOut(ctx, "u-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, attendance.StateOpen, in.Status)
	assert.Equal(t, "2025-03-05", in.Date)
	assert.Equal(t, attendance.StateClosed, out.Status)
	require.NotNil(t, out.HoursWorked)
	assert.Equal(t, 8.5, *out.HoursWorked)
	require.NotNil(t, out.Duration)
	assert.Equal(t, "8h 30m", *out.Duration)
}

func TestClockIn_OneRecordPerDay(t *testing.T) {
	repo := newMemoryRepository()
	svc, c := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "u-1")
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	_, err = svc.ClockIn(ctx, "u-1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyOpen)
	assert.Equal(t, "Already clocked in today. Please clock out first.", err.Error())

	c.t = c.t.Add(time.Hour)
	_, err = svc.ClockOut(ctx, "u-1")
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "u-1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
	_, err = svc.ClockOut(ctx, "u-1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)

	assert.Len(t, repo.records, 1)

	// Next day starts fresh.
	c.t = c.t.Add(24 * time.Hour)
	_, err = svc.ClockIn(ctx, "u-1")
	assert.NoError(t, err)
	assert.Len(t, repo.records, 2)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	svc, _ := newTestService(newMemoryRepository(), time.UTC, time.Date(2025, 3, 5, 17, 0, 0, 0, time.UTC))

	_, err := svc.ClockOut(context.Background(), "u-1")
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestClockOut_MustBeAfterClockIn(t *testing.T) {
	repo := newMemoryRepository()
	svc, c := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "u-1")
	require.NoError(t, err)

	// Same instant.
	_, err = svc.ClockOut(ctx, "u-1")
	assert.ErrorIs(t, err, attendance.ErrInvalidClockOut)

	c.t = c.t.Add(-time.Minute)
	_, err = svc.ClockOut(ctx, "u-1")
	assert.ErrorIs(t, err, attendance.ErrInvalidClockOut)

	// Nothing was written.
	rec, err := repo.GetByUserAndDate(ctx, "u-1", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, rec.ClockOut)
}

func TestClockIn_ConcurrentDuplicateIsReportedAsState(t *testing.T) {
	repo := newMemoryRepository()
	svc, _ := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	// Another request inserts between our lookup and our insert.
	repo.beforeCreate = func() {
		repo.beforeCreate = nil
		_, err := repo.Create(context.Background(), attendance.Attendance{
			UserID:  "u-1",
			Date:    day,
			ClockIn: time.Date(2025, 3, 5, 8, 59, 59, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	_, err := svc.ClockIn(context.Background(), "u-1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyOpen)
	assert.Len(t, repo.records, 1)
}

func TestClockIn_DuplicateRereadStorageFailure(t *testing.T) {
	repo := newMemoryRepository()
	svc, _ := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	repo.beforeCreate = func() {
		repo.beforeCreate = nil
		_, err := repo.Create(context.Background(), attendance.Attendance{UserID: "u-1", Date: day})
		require.NoError(t, err)
	}
	repo.onDuplicate = func() {
		repo.failWith = database.Wrap("find attendance", errors.New("connection reset"))
	}

	_, err := svc.ClockIn(context.Background(), "u-1")
	assert.ErrorIs(t, err, database.ErrStorage)
	assert.NotErrorIs(t, err, attendance.ErrAlreadyOpen)
}

func TestClockIn_ParallelRequestsCreateOneRecord(t *testing.T) {
	repo := newMemoryRepository()
	svc, _ := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ClockIn(context.Background(), "u-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyOpen)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, repo.records, 1)
}

func TestClockIn_UsesBusinessTimezone(t *testing.T) {
	repo := newMemoryRepository()
	wib := time.FixedZone("WIB", 7*3600)
	// 18:00 UTC on the 4th is 01:00 on the 5th in UTC+7.
	svc, _ := newTestService(repo, wib, time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC))

	resp, err := svc.ClockIn(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", resp.Date)
}

func TestClockIn_StorageFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.failWith = database.Wrap("find attendance", errors.New("connection reset"))
	svc, _ := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))

	_, err := svc.ClockIn(context.Background(), "u-1")
	assert.ErrorIs(t, err, database.ErrStorage)
}

func TestRecord(t *testing.T) {
	repo := newMemoryRepository()
	svc, c := newTestService(repo, time.UTC, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.Record(ctx, employee, attendance.RecordRequest{Action: "breakStart"})
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	resp, err := svc.Record(ctx, employee, attendance.RecordRequest{Action: attendance.ActionClockIn})
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.UserID)

	c.t = c.t.Add(90 * time.Minute)
	resp, err = svc.Record(ctx, employee, attendance.RecordRequest{Action: attendance.ActionClockOut})
	require.NoError(t, err)
	assert.Equal(t, 1.5, *resp.HoursWorked)
}

func seedDay(t *testing.T, repo *memoryRepository, userID string, day int, hour int) {
	t.Helper()
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID:  userID,
		Date:    time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		ClockIn: time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	repo := newMemoryRepository()
	seedDay(t, repo, "u-1", 3, 9)
	seedDay(t, repo, "u-1", 5, 9)
	seedDay(t, repo, "u-2", 5, 8)
	seedDay(t, repo, "u-2", 10, 8)
	svc, _ := newTestService(repo, time.UTC, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	manager := auth.Identity{ID: "m-1", Roles: []string{"MANAGER"}}

	t.Run("privileged sees everyone, newest first", func(t *testing.T) {
		resp, err := svc.List(ctx, manager, attendance.AttendanceFilter{})
		require.NoError(t, err)
		require.Equal(t, 4, resp.Count)
		assert.Equal(t, "2025-03-10", resp.Data[0].Date)
		// Same date: later clock-in first.
		assert.Equal(t, "u-1", resp.Data[1].UserID)
		assert.Equal(t, "u-2", resp.Data[2].UserID)
		assert.Equal(t, "2025-03-03", resp.Data[3].Date)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		resp, err := svc.List(ctx, manager, attendance.AttendanceFilter{StartDate: "2025-03-05", EndDate: "2025-03-10"})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Count)
	})

	t.Run("privileged filters by user", func(t *testing.T) {
		resp, err := svc.List(ctx, manager, attendance.AttendanceFilter{UserID: "u-2"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("employee is scoped to self", func(t *testing.T) {
		resp, err := svc.List(ctx, employee, attendance.AttendanceFilter{UserID: "u-2"})
		require.NoError(t, err)
		require.Equal(t, 2, resp.Count)
		for _, r := range resp.Data {
			assert.Equal(t, "u-1", r.UserID)
		}
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := svc.List(ctx, manager, attendance.AttendanceFilter{StartDate: "2025-03-10", EndDate: "2025-03-01"})
		var vErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &vErrs)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		resp, err := svc.List(ctx, auth.Identity{ID: "u-9", Roles: []string{"EMPLOYEE"}}, attendance.AttendanceFilter{})
		require.NoError(t, err)
		assert.NotNil(t, resp.Data)
		assert.Equal(t, 0, resp.Count)
	})
}
