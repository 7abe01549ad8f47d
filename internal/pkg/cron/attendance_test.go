package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAttendanceRepo struct {
	attendance.AttendanceRepository
	records  map[string]attendance.Attendance
	listErr  error
	listCall int
	// conflict makes Update lose the race for these ids
	conflict map[string]bool
}

func (m *memAttendanceRepo) ListOpenBefore(_ context.Context, cutoff time.Time) ([]attendance.Attendance, error) {
	m.listCall++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []attendance.Attendance
	for _, r := range m.records {
		if r.CheckOut == nil && r.CheckIn != nil && r.CheckIn.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAttendanceRepo) Update(_ context.Context, a *attendance.Attendance) error {
	if m.conflict[a.ID] || m.records[a.ID].Version != a.Version {
		return attendance.ErrConcurrentUpdate
	}
	a.Version++
	m.records[a.ID] = *a
	return nil
}

var wib = time.FixedZone("WIB", 7*3600)

func monday9() *time.Time {
	t := time.Date(2024, 1, 15, 9, 0, 0, 0, wib).UTC()
	return &t
}

func TestReconcile_ClosesYesterdaysOpenRecord(t *testing.T) {
	repo := &memAttendanceRepo{records: map[string]attendance.Attendance{
		"a1": {ID: "a1", EmployeeID: "e1", CheckIn: monday9(), Status: attendance.StatusPresent, Version: 1},
	}}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)

	result, err := jobs.Reconcile(context.Background(), time.Date(2024, 1, 16, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Selected: 1, Closed: 1}, result)

	rec := repo.records["a1"]
	require.NotNil(t, rec.CheckOut)
	assert.True(t, rec.CheckOut.Equal(time.Date(2024, 1, 15, 23, 59, 59, int(999*time.Millisecond), wib)))
	assert.Equal(t, attendance.StatusIncomplete, rec.Status)
	assert.True(t, rec.IsAutoCheckout)
	require.NotNil(t, rec.AdminNotes)
	assert.InDelta(t, 14.99, rec.WorkingHours, 0.011)
	assert.InDelta(t, 6.99, rec.OvertimeHours, 0.011)
	assert.True(t, rec.IsToilEligible)
	assert.Equal(t, 2, rec.Version)
}

func TestReconcile_LeavesTodaysRecordsAlone(t *testing.T) {
	today := time.Date(2024, 1, 16, 0, 30, 0, 0, wib).UTC()
	repo := &memAttendanceRepo{records: map[string]attendance.Attendance{
		"a1": {ID: "a1", EmployeeID: "e1", CheckIn: &today, Version: 1},
	}}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)

	result, err := jobs.Reconcile(context.Background(), time.Date(2024, 1, 16, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Selected)
	assert.Nil(t, repo.records["a1"].CheckOut)
}

func TestReconcile_ConcurrentCheckoutIsSkipped(t *testing.T) {
	repo := &memAttendanceRepo{
		records: map[string]attendance.Attendance{
			"a1": {ID: "a1", EmployeeID: "e1", CheckIn: monday9(), Version: 1},
			"a2": {ID: "a2", EmployeeID: "e2", CheckIn: monday9(), Version: 1},
		},
		conflict: map[string]bool{"a1": true},
	}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)

	result, err := jobs.Reconcile(context.Background(), time.Date(2024, 1, 16, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Selected: 2, Closed: 1, Skipped: 1}, result)
	assert.Nil(t, repo.records["a1"].CheckOut)
	assert.NotNil(t, repo.records["a2"].CheckOut)
}

func TestReconcileAtMidnight_OncePerDay(t *testing.T) {
	repo := &memAttendanceRepo{records: map[string]attendance.Attendance{
		"a1": {ID: "a1", EmployeeID: "e1", CheckIn: monday9(), Version: 1},
	}}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)
	ctx := context.Background()

	jobs.now = func() time.Time { return time.Date(2024, 1, 15, 23, 59, 0, 0, wib) }
	require.NoError(t, jobs.ReconcileAtMidnight(ctx))
	assert.Equal(t, 0, repo.listCall)

	jobs.now = func() time.Time { return time.Date(2024, 1, 16, 0, 0, 5, 0, wib) }
	require.NoError(t, jobs.ReconcileAtMidnight(ctx))
	assert.Equal(t, 1, repo.listCall)
	afterFirst := repo.records["a1"]

	jobs.now = func() time.Time { return time.Date(2024, 1, 16, 0, 0, 45, 0, wib) }
	require.NoError(t, jobs.ReconcileAtMidnight(ctx))
	assert.Equal(t, 1, repo.listCall)
	assert.Equal(t, afterFirst, repo.records["a1"])

	jobs.now = func() time.Time { return time.Date(2024, 1, 16, 0, 1, 0, 0, wib) }
	require.NoError(t, jobs.ReconcileAtMidnight(ctx))
	assert.Equal(t, 1, repo.listCall)
}

func TestReconcileAtMidnight_SelectionErrorAbandonsDay(t *testing.T) {
	repo := &memAttendanceRepo{records: map[string]attendance.Attendance{}, listErr: errors.New("db down")}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)
	jobs.now = func() time.Time { return time.Date(2024, 1, 16, 0, 0, 0, 0, wib) }

	assert.Error(t, jobs.ReconcileAtMidnight(context.Background()))
	assert.NoError(t, jobs.ReconcileAtMidnight(context.Background()))
	assert.Equal(t, 1, repo.listCall)
}

func TestReconcile_SecondPassMutatesNothing(t *testing.T) {
	repo := &memAttendanceRepo{records: map[string]attendance.Attendance{
		"a1": {ID: "a1", EmployeeID: "e1", CheckIn: monday9(), Version: 1},
	}}
	jobs := NewAttendanceJobs(repo, wib, time.Minute)
	midnight := time.Date(2024, 1, 16, 0, 0, 0, 0, wib)

	_, err := jobs.Reconcile(context.Background(), midnight)
	require.NoError(t, err)
	first := repo.records["a1"]

	result, err := jobs.Reconcile(context.Background(), midnight)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Selected)
	assert.Equal(t, first, repo.records["a1"])
}
