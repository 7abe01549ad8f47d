package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository

	tx   postgresql.Transactor
	loc  *time.Location
	work config.WorkConfig
	now  func() time.Time
}

// timePtrToString formats t in loc, or returns nil.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.HasEmployee() {
		return attendance.AttendanceResponse{}, user.ErrEmployeeProfileRequired
	}

	if err := a.checkOnSite(req); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowLocal := a.now().In(a.loc)
	dayStart, dayEnd := attendance.DayBounds(nowLocal)
	checkIn := nowLocal.UTC()

	var created attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Holding the employee row serializes check-ins for the same employee
		active, err := a.EmployeeRepository.LockActive(ctx, actor.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to lock employee: %w", err)
		}
		if !active {
			return employee.ErrEmployeeInactive
		}

		hasCheckedIn, err := a.AttendanceRepository.HasCheckedInBetween(ctx, actor.EmployeeID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to check if employee has checked in today: %w", err)
		}
		if hasCheckedIn {
			return attendance.ErrAlreadyCheckedIn
		}

		created, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			EmployeeID:       actor.EmployeeID,
			CheckIn:          &checkIn,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			LocationAccuracy: req.LocationAccuracy,
			Location:         req.Location,
			Notes:            req.Notes,
			Status:           a.checkInStatus(nowLocal, req.IsRemote),
			IsWeekend:        attendance.IsWeekend(nowLocal),
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mapAttendanceToResponse(created), nil
}

// checkInStatus is remote when flagged, late after work start plus grace, present otherwise
func (a *AttendanceServiceImpl) checkInStatus(nowLocal time.Time, remote bool) attendance.Status {
	if remote {
		return attendance.StatusRemote
	}
	workStart := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(),
		a.work.StartHour, a.work.StartMinute, 0, 0, a.loc)
	if nowLocal.After(workStart.Add(a.work.LateGrace)) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	att, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}
	if !actor.HasEmployee() || att.EmployeeID != actor.EmployeeID {
		return attendance.CheckOutResponse{}, attendance.ErrAttendanceForbidden
	}
	if att.CheckOut != nil {
		return attendance.CheckOutResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if att.CheckIn == nil {
		return attendance.CheckOutResponse{}, attendance.ErrNotCheckedIn
	}

	checkOut := a.now().UTC()
	summary := attendance.ComputeWorkSummary(att.CheckIn.In(a.loc), checkOut.In(a.loc))

	att.CheckOut = &checkOut
	att.ApplySummary(summary)
	att.Status = attendance.StatusCompleted
	if req.Notes != nil {
		att.Notes = req.Notes
	}

	if err := a.AttendanceRepository.Update(ctx, &att); err != nil {
		return attendance.CheckOutResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	return attendance.CheckOutResponse{
		AttendanceResponse: a.mapAttendanceToResponse(att),
		WorkingSummary:     attendance.NewWorkingSummary(summary),
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if validator.IsEmpty(id) {
		return attendance.AttendanceResponse{}, validator.Field("id", "id is required")
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.IsManager() && att.EmployeeID != actor.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceForbidden
	}

	return a.mapAttendanceToResponse(att), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !actor.HasEmployee() {
		return attendance.ListAttendanceResponse{}, user.ErrEmployeeProfileRequired
	}

	filter.From, filter.To = a.resolveDates(filter.StartDate, filter.EndDate)

	attendances, total, err := a.AttendanceRepository.ListByEmployee(ctx, actor.EmployeeID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return a.listResponse(attendances, total, filter.Page, filter.Limit), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !actor.IsManager() {
		return attendance.ListAttendanceResponse{}, user.ErrManagerAccessRequired
	}

	filter.From, filter.To = a.resolveDates(filter.StartDate, filter.EndDate)

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return a.listResponse(attendances, total, filter.Page, filter.Limit), nil
}

// resolveDates turns inclusive YYYY-MM-DD bounds into a [from, to) check-in window in the company timezone
func (a *AttendanceServiceImpl) resolveDates(startDate, endDate *string) (from, to *time.Time) {
	if startDate != nil && *startDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", *startDate, a.loc); err == nil {
			from = &t
		}
	}
	if endDate != nil && *endDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", *endDate, a.loc); err == nil {
			next := t.AddDate(0, 0, 1)
			to = &next
		}
	}
	return from, to
}

func (a *AttendanceServiceImpl) listResponse(attendances []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func (a *AttendanceServiceImpl) mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	var date *string
	if att.CheckIn != nil {
		d := att.CheckIn.In(a.loc).Format("2006-01-02")
		date = &d
	}

	return attendance.AttendanceResponse{
		ID:               att.ID,
		EmployeeID:       att.EmployeeID,
		EmployeeName:     att.EmployeeName,
		Date:             date,
		CheckIn:          timePtrToString(att.CheckIn, a.loc),
		CheckOut:         timePtrToString(att.CheckOut, a.loc),
		Latitude:         att.Latitude,
		Longitude:        att.Longitude,
		LocationAccuracy: att.LocationAccuracy,
		Location:         att.Location,
		Notes:            att.Notes,
		WorkingHours:     att.WorkingHours,
		OvertimeHours:    att.OvertimeHours,
		IsToilEligible:   att.IsToilEligible,
		ToilHoursEarned:  att.ToilHoursEarned,
		IsWeekend:        att.IsWeekend,
		IsHoliday:        att.IsHoliday,
		Status:           string(att.Status),
		IsAutoCheckout:   att.IsAutoCheckout,
		AdminNotes:       att.AdminNotes,
		Version:          att.Version,
		CreatedAt:        att.CreatedAt.In(a.loc).Format("2006-01-02 15:04:05"),
		UpdatedAt:        att.UpdatedAt.In(a.loc).Format("2006-01-02 15:04:05"),
	}
}

// UpdateAttendance implements attendance.AttendanceService.
// This allows managers/owners to fix attendance data like wrong check times.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.IsManager() {
		return attendance.AttendanceResponse{}, user.ErrManagerAccessRequired
	}

	att, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.Version != nil && *req.Version != att.Version {
		return attendance.AttendanceResponse{}, attendance.ErrConcurrentUpdate
	}

	if req.CheckInTime != nil {
		t := req.CheckInTime.UTC()
		att.CheckIn = &t
	}
	if req.CheckOutTime != nil {
		t := req.CheckOutTime.UTC()
		att.CheckOut = &t
	}
	if att.CheckIn != nil && att.CheckOut != nil {
		if att.CheckOut.Before(*att.CheckIn) {
			return attendance.AttendanceResponse{}, validator.Field("check_out", "check_out must not be before check_in")
		}
		att.ApplySummary(attendance.ComputeWorkSummary(att.CheckIn.In(a.loc), att.CheckOut.In(a.loc)))
	}

	if req.Status != nil {
		att.Status = attendance.Status(*req.Status)
	}
	if req.IsHoliday != nil {
		att.IsHoliday = *req.IsHoliday
	}
	if req.AdminNotes != nil {
		att.AdminNotes = req.AdminNotes
	}

	if err := a.AttendanceRepository.Update(ctx, &att); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return a.mapAttendanceToResponse(att), nil
}

// checkOnSite enforces the office fence for on-site check-ins when one is configured
func (a *AttendanceServiceImpl) checkOnSite(req attendance.CheckInRequest) error {
	if a.work.Office == nil || req.IsRemote {
		return nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return validator.Field("latitude", "latitude and longitude are required for on-site check-in")
	}
	if !a.work.Office.Contains(geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}) {
		return attendance.ErrOutsideAllowedRadius
	}
	return nil
}

func NewAttendanceService(
	tx postgresql.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	loc *time.Location,
	work config.WorkConfig,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		tx:                   tx,
		loc:                  loc,
		work:                 work,
		now:                  time.Now,
	}
}
