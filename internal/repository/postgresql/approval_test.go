package postgresql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveRequestRepositoryUpdateReviewConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	approver := "mgr-1"
	decided := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	req := &approval.LeaveRequest{ID: "lr-1", Version: 2, Review: approval.Review{
		Status: approval.StatusApproved, ApproverID: &approver, DecidedAt: &decided,
	}}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $6 AND version = $7 AND status = 'pending'")).
		WithArgs(approval.StatusApproved, &approver, &decided, req.ApproverNotes, req.RejectionReason, "lr-1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at"}))

	err = NewLeaveRequestRepository(mock).UpdateReview(context.Background(), req)

	assert.ErrorIs(t, err, approval.ErrConcurrentUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOvertimeRequestRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	workDate := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	name := "Budi"
	mock.ExpectQuery(regexp.QuoteMeta("FROM overtime_requests o")).
		WithArgs("ot-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "employee_id", "work_date", "hours", "reason", "toil_hours_awarded",
			"status", "approver_id", "decided_at", "approver_notes", "rejection_reason",
			"version", "created_at", "updated_at", "employee_name",
		}).AddRow(
			"ot-1", "emp-1", workDate, 2.5, "release night", (*float64)(nil),
			approval.StatusPending, (*string)(nil), (*time.Time)(nil), (*string)(nil), (*string)(nil),
			1, workDate, workDate, &name,
		))

	req, err := NewOvertimeRequestRepository(mock).GetByID(context.Background(), "ot-1")

	require.NoError(t, err)
	assert.Equal(t, 2.5, req.Hours)
	assert.Equal(t, approval.StatusPending, req.Status)
	assert.Nil(t, req.ToilHoursAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeOffRequestRepositoryGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM time_off_requests t")).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = NewTimeOffRequestRepository(mock).GetByID(context.Background(), "nope")

	assert.ErrorIs(t, err, approval.ErrTimeOffRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToilBalanceRepositoryGetDefaultsToZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM toil_balances")).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows([]string{"employee_id", "earned_hours", "used_hours", "updated_at"}))

	balance, err := NewToilBalanceRepository(mock).Get(context.Background(), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, approval.ToilBalance{EmployeeID: "emp-1"}, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToilBalanceRepositoryCreditUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (employee_id) DO UPDATE")).
		WithArgs("emp-1", 2.5).
		WillReturnRows(pgxmock.NewRows([]string{"employee_id", "earned_hours", "used_hours", "updated_at"}).
			AddRow("emp-1", 6.5, 1.0, now))

	balance, err := NewToilBalanceRepository(mock).Credit(context.Background(), "emp-1", 2.5)

	require.NoError(t, err)
	assert.Equal(t, 5.5, balance.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToilBalanceRepositoryDebitInsufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("AND earned_hours - used_hours >= $2")).
		WithArgs("emp-1", 8.0).
		WillReturnRows(pgxmock.NewRows([]string{"employee_id", "earned_hours", "used_hours", "updated_at"}))

	_, err = NewToilBalanceRepository(mock).Debit(context.Background(), "emp-1", 8.0)

	assert.ErrorIs(t, err, approval.ErrInsufficientToilBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFiltersUnion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	empID := "emp-1"
	reqType := "overtime"
	status := "pending"
	created := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	hours := 3.0

	mock.ExpectQuery(regexp.QuoteMeta("WHERE req.employee_id = $1 AND req.type = $2 AND req.status = $3")).
		WithArgs(empID, reqType, status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY req.created_at DESC")).
		WithArgs(empID, reqType, status, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "type", "employee_id", "full_name", "status", "start_date", "end_date", "hours", "reason", "created_at",
		}).AddRow("ot-1", approval.TypeOvertime, empID, (*string)(nil), approval.StatusPending, created, created, &hours, "deploy", created))

	rows, total, err := NewRequestRepository(mock).List(context.Background(), approval.RequestFilter{
		EmployeeID: &empID, Type: &reqType, Status: &status, Page: 1, Limit: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, approval.TypeOvertime, rows[0].Type)
	assert.Equal(t, 3.0, *rows[0].Hours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
