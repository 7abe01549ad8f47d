package report

import "context"

// ReportService renders timekeeping data as downloadable documents
type ReportService interface {
	// ExportAttendance builds an XLSX workbook of attendance records in a date range
	ExportAttendance(ctx context.Context, req AttendanceExportRequest) (File, error)

	// ToilStatement builds a PDF of one employee's TOIL balance and approved movements
	ToilStatement(ctx context.Context, req ToilStatementRequest) (File, error)
}
