package approval

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var decidedAt = time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)

func TestDecideApprove(t *testing.T) {
	r := Review{Status: StatusPending}
	assert.False(t, r.IsFinal())

	err := r.Decide(Decision{Action: ActionApprove, ApproverID: "mgr-1", DecidedAt: decidedAt, Notes: ptr("  enjoy  ")})

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, "mgr-1", *r.ApproverID)
	assert.Equal(t, decidedAt, *r.DecidedAt)
	assert.Equal(t, "enjoy", *r.ApproverNotes)
	assert.Nil(t, r.RejectionReason)
	assert.True(t, r.IsFinal())
}

func TestDecideReject(t *testing.T) {
	r := Review{Status: StatusPending}

	err := r.Decide(Decision{Action: ActionReject, ApproverID: "mgr-1", DecidedAt: decidedAt, Reason: ptr(" overlapping shift ")})

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "overlapping shift", *r.RejectionReason)
	assert.Equal(t, "mgr-1", *r.ApproverID)
}

func TestDecideRejectRequiresReason(t *testing.T) {
	for _, reason := range []*string{nil, ptr(""), ptr("   ")} {
		r := Review{Status: StatusPending}

		err := r.Decide(Decision{Action: ActionReject, ApproverID: "mgr-1", DecidedAt: decidedAt, Reason: reason})

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "reason")
		assert.Equal(t, Review{Status: StatusPending}, r, "rejected decision must not mutate the review")
	}
}

func TestDecideIsOneWay(t *testing.T) {
	for _, status := range []Status{StatusApproved, StatusRejected} {
		for _, action := range []Action{ActionApprove, ActionReject} {
			original := Review{Status: status, ApproverID: ptr("first"), DecidedAt: ptr(decidedAt)}
			r := original

			err := r.Decide(Decision{Action: action, ApproverID: "second", DecidedAt: decidedAt.Add(time.Hour), Reason: ptr("again")})

			assert.ErrorIs(t, err, ErrRequestAlreadyProcessed)
			assert.Equal(t, original, r)
		}
	}
}

func TestDecideUnknownAction(t *testing.T) {
	r := Review{Status: StatusPending}
	assert.ErrorIs(t, r.Decide(Decision{Action: "escalate"}), ErrUnknownAction)
	assert.Equal(t, StatusPending, r.Status)
}

func TestParseRequestType(t *testing.T) {
	for in, want := range map[string]RequestType{"leave": TypeLeave, "overtime": TypeOvertime, "time-off": TypeTimeOff, "time_off": TypeTimeOff} {
		got, ok := ParseRequestType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseRequestType("sabbatical")
	assert.False(t, ok)
}

func TestRejectRequestValidate(t *testing.T) {
	req := RejectRequest{Type: TypeLeave, ID: "req-1", Reason: " "}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.Equal(t, "reason is required when rejecting a request", verrs.ToMap()["reason"])
}

func TestApproveRequestValidate(t *testing.T) {
	assert.NoError(t, (&ApproveRequest{Type: TypeOvertime, ID: "r", ToilHoursAwarded: ptr(0.0)}).Validate())
	assert.Error(t, (&ApproveRequest{Type: TypeOvertime, ID: "r", ToilHoursAwarded: ptr(-1.0)}).Validate())
	assert.Error(t, (&ApproveRequest{Type: TypeLeave, ID: "r", ToilHoursAwarded: ptr(2.0)}).Validate())
}

func TestCreateRequestValidation(t *testing.T) {
	leave := CreateLeaveRequest{LeaveType: "annual", StartDate: "2024-06-03", EndDate: "2024-06-05", Reason: "family trip"}
	require.NoError(t, leave.Validate())
	assert.Equal(t, 2, leave.End.Day()-leave.Start.Day())

	inverted := CreateLeaveRequest{LeaveType: "annual", StartDate: "2024-06-05", EndDate: "2024-06-03", Reason: "x"}
	assert.Error(t, inverted.Validate())

	overtime := CreateOvertimeRequest{WorkDate: "2024-06-01", Hours: 30, Reason: "release"}
	assert.Error(t, overtime.Validate())

	timeOff := CreateTimeOffRequest{DateStr: "2024-06-07", Hours: 4, Reason: "dentist"}
	require.NoError(t, timeOff.Validate())
	assert.Equal(t, 7, timeOff.Date.Day())
}

func TestRequestFilterNormalizesType(t *testing.T) {
	f := RequestFilter{Type: ptr("time-off")}
	require.NoError(t, f.Validate())
	assert.Equal(t, "time_off", *f.Type)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
}

func TestToilBalanceAvailable(t *testing.T) {
	assert.Equal(t, 2.5, ToilBalance{EarnedHours: 6, UsedHours: 3.5}.Available())
}
