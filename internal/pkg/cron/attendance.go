package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
)

const autoCheckoutNote = "Automatically checked out at end of day: no check-out was recorded."

// ReconcileResult summarizes one reconciler pass
type ReconcileResult struct {
	Selected int
	Closed   int
	Skipped  int
	Failed   int
}

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	loc            *time.Location
	interval       time.Duration
	now            func() time.Time

	mu         sync.Mutex
	lastRunDay string
}

func NewAttendanceJobs(attendanceRepo attendance.AttendanceRepository, loc *time.Location, interval time.Duration) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		loc:            loc,
		interval:       interval,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("midnight_reconciler", j.interval, j.ReconcileAtMidnight)
}

// ReconcileAtMidnight runs the reconciler when the local clock reads 00:00,
// at most once per calendar day. A failed pass is not retried until the next midnight.
func (j *AttendanceJobs) ReconcileAtMidnight(ctx context.Context) error {
	nowLocal := j.now().In(j.loc)
	if nowLocal.Hour() != 0 || nowLocal.Minute() != 0 {
		return nil
	}

	day := nowLocal.Format("2006-01-02")
	j.mu.Lock()
	if j.lastRunDay == day {
		j.mu.Unlock()
		return nil
	}
	j.lastRunDay = day
	j.mu.Unlock()

	_, err := j.Reconcile(ctx, nowLocal)
	return err
}

// Reconcile closes every attendance left open before the start of now's local day.
// Each record is checked out one millisecond before midnight and marked incomplete.
func (j *AttendanceJobs) Reconcile(ctx context.Context, now time.Time) (ReconcileResult, error) {
	todayStart, _ := attendance.DayBounds(now.In(j.loc))

	slog.Info("Cron: Starting midnight reconciler", "cutoff", todayStart)

	open, err := j.attendanceRepo.ListOpenBefore(ctx, todayStart)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to list open attendances: %w", err)
	}

	result := ReconcileResult{Selected: len(open)}
	if len(open) == 0 {
		slog.Info("Cron: No open attendances found")
		return result, nil
	}

	checkOut := todayStart.Add(-time.Millisecond)
	for i := range open {
		rec := open[i]
		if rec.CheckIn == nil {
			continue
		}

		checkOutUTC := checkOut.UTC()
		rec.CheckOut = &checkOutUTC
		rec.ApplySummary(attendance.ComputeWorkSummary(rec.CheckIn.In(j.loc), checkOut))
		rec.Status = attendance.StatusIncomplete
		rec.IsAutoCheckout = true
		note := autoCheckoutNote
		rec.AdminNotes = &note

		if err := j.attendanceRepo.Update(ctx, &rec); err != nil {
			if errors.Is(err, attendance.ErrConcurrentUpdate) {
				slog.Info("Cron: Attendance closed concurrently, skipping",
					"attendance_id", rec.ID,
					"employee_id", rec.EmployeeID)
				result.Skipped++
				continue
			}
			slog.Error("Cron: Failed to auto-close attendance",
				"attendance_id", rec.ID,
				"employee_id", rec.EmployeeID,
				"error", err)
			result.Failed++
			continue
		}
		result.Closed++
	}

	slog.Info("Cron: Reconciled open attendances",
		"selected", result.Selected,
		"closed", result.Closed,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}
