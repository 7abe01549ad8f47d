package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeaders = []interface{}{
	"Date", "Employee", "Check In", "Check Out", "Working Hours", "Overtime Hours",
	"TOIL Earned", "Weekend", "Holiday", "Status", "Auto Checkout",
}

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	overtimeRepo   approval.OvertimeRequestRepository
	timeOffRepo    approval.TimeOffRequestRepository
	toilRepo       approval.ToilBalanceRepository
	loc            *time.Location

	now func() time.Time
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeRepo approval.OvertimeRequestRepository,
	timeOffRepo approval.TimeOffRequestRepository,
	toilRepo approval.ToilBalanceRepository,
	loc *time.Location,
) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		overtimeRepo:   overtimeRepo,
		timeOffRepo:    timeOffRepo,
		toilRepo:       toilRepo,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *ReportServiceImpl) requireManager(ctx context.Context) error {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return nil
}

// localDay maps a parsed calendar date onto midnight in the company timezone
func (s *ReportServiceImpl) localDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceExportRequest) (report.File, error) {
	if err := req.Validate(); err != nil {
		return report.File{}, err
	}
	if err := s.requireManager(ctx); err != nil {
		return report.File{}, err
	}

	var employeeID *string
	if req.EmployeeID != nil && *req.EmployeeID != "" {
		employeeID = req.EmployeeID
	}

	from := s.localDay(req.Start)
	to := s.localDay(req.End).AddDate(0, 0, 1)
	records, err := s.attendanceRepo.ListBetween(ctx, from, to, employeeID)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	data, err := s.buildAttendanceWorkbook(records)
	if err != nil {
		return report.File{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.File{
		Name:        fmt.Sprintf("attendance_%s_%s.xlsx", req.StartDate, req.EndDate),
		ContentType: report.ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (s *ReportServiceImpl) buildAttendanceWorkbook(records []attendance.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(attendanceSheet, "A1", &attendanceHeaders); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(attendanceHeaders), 1)
	if err := f.SetCellStyle(attendanceSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(attendanceSheet, "A", "K", 16); err != nil {
		return nil, err
	}

	var totalWorking, totalOvertime, totalToil float64
	for i, rec := range records {
		name := rec.EmployeeID
		if rec.EmployeeName != nil {
			name = *rec.EmployeeName
		}

		row := []interface{}{
			s.formatDate(rec.CheckIn), name, s.formatTime(rec.CheckIn), s.formatTime(rec.CheckOut),
			rec.WorkingHours, rec.OvertimeHours, rec.ToilHoursEarned,
			yesNo(rec.IsWeekend), yesNo(rec.IsHoliday), string(rec.Status), yesNo(rec.IsAutoCheckout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return nil, err
		}

		totalWorking += rec.WorkingHours
		totalOvertime += rec.OvertimeHours
		totalToil += rec.ToilHoursEarned
	}

	totalsRow := len(records) + 2
	totals := []interface{}{"Total", "", "", "", round2(totalWorking), round2(totalOvertime), round2(totalToil)}
	cell, _ := excelize.CoordinatesToCellName(1, totalsRow)
	if err := f.SetSheetRow(attendanceSheet, cell, &totals); err != nil {
		return nil, err
	}
	lastTotal, _ := excelize.CoordinatesToCellName(len(totals), totalsRow)
	if err := f.SetCellStyle(attendanceSheet, cell, lastTotal, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToilStatement implements report.ReportService.
func (s *ReportServiceImpl) ToilStatement(ctx context.Context, req report.ToilStatementRequest) (report.File, error) {
	if err := req.Validate(); err != nil {
		return report.File{}, err
	}
	if err := s.requireManager(ctx); err != nil {
		return report.File{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return report.File{}, err
	}
	balance, err := s.toilRepo.Get(ctx, req.EmployeeID)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to get TOIL balance: %w", err)
	}

	dates := approval.DateRange{From: req.Start, To: req.End}
	overtime, err := s.overtimeRepo.ListApprovedBetween(ctx, req.EmployeeID, dates)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to list overtime: %w", err)
	}
	timeOff, err := s.timeOffRepo.ListApprovedBetween(ctx, req.EmployeeID, dates)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to list time off: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "TOIL Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", emp.FullName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", req.StartDate, req.EndDate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", s.now().In(s.loc).Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Balance")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Earned: %.2f h   Used: %.2f h   Available: %.2f h",
		balance.EarnedHours, balance.UsedHours, balance.Available()))
	pdf.Ln(12)

	movementTable(pdf, "Approved overtime (credited)", len(overtime), func(i int) (string, float64, string) {
		ot := overtime[i]
		awarded := ot.Hours
		if ot.ToilHoursAwarded != nil {
			awarded = *ot.ToilHoursAwarded
		}
		return ot.WorkDate.Format("2006-01-02"), awarded, ot.Reason
	})
	movementTable(pdf, "Approved time off (debited)", len(timeOff), func(i int) (string, float64, string) {
		to := timeOff[i]
		return to.Date.Format("2006-01-02"), to.Hours, to.Reason
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return report.File{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.File{
		Name:        fmt.Sprintf("toil_%s_%s_%s.pdf", req.EmployeeID, req.StartDate, req.EndDate),
		ContentType: report.ContentTypePDF,
		Data:        buf.Bytes(),
	}, nil
}

func movementTable(pdf *gofpdf.Fpdf, title string, n int, row func(i int) (date string, hours float64, reason string)) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Hours", "1", 0, "R", false, 0, "")
	pdf.CellFormat(120, 7, "Reason", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if n == 0 {
		pdf.CellFormat(180, 7, "None", "1", 1, "L", false, 0, "")
	}
	var total float64
	for i := 0; i < n; i++ {
		date, hours, reason := row(i)
		total += hours
		pdf.CellFormat(35, 7, date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", hours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(120, 7, truncate(reason, 70), "1", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", round2(total)), "1", 1, "R", false, 0, "")
	pdf.Ln(6)
}

func (s *ReportServiceImpl) formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02")
}

func (s *ReportServiceImpl) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("15:04:05")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
