package approval

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
)

const dateLayout = "2006-01-02"

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func withReview(resp approval.RequestResponse, review approval.Review) approval.RequestResponse {
	resp.Status = string(review.Status)
	resp.ApproverID = review.ApproverID
	resp.DecidedAt = timePtrToString(review.DecidedAt)
	resp.ApproverNotes = review.ApproverNotes
	resp.RejectionReason = review.RejectionReason
	return resp
}

func mapLeaveToResponse(r approval.LeaveRequest) approval.RequestResponse {
	leaveType := string(r.LeaveType)
	return withReview(approval.RequestResponse{
		ID:           r.ID,
		Type:         string(approval.TypeLeave),
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    &leaveType,
		StartDate:    r.StartDate.Format(dateLayout),
		EndDate:      r.EndDate.Format(dateLayout),
		Reason:       r.Reason,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}, r.Review)
}

func mapOvertimeToResponse(r approval.OvertimeRequest) approval.RequestResponse {
	hours := r.Hours
	return withReview(approval.RequestResponse{
		ID:               r.ID,
		Type:             string(approval.TypeOvertime),
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		StartDate:        r.WorkDate.Format(dateLayout),
		EndDate:          r.WorkDate.Format(dateLayout),
		Hours:            &hours,
		ToilHoursAwarded: r.ToilHoursAwarded,
		Reason:           r.Reason,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}, r.Review)
}

func mapTimeOffToResponse(r approval.TimeOffRequest) approval.RequestResponse {
	hours := r.Hours
	return withReview(approval.RequestResponse{
		ID:           r.ID,
		Type:         string(approval.TypeTimeOff),
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		StartDate:    r.Date.Format(dateLayout),
		EndDate:      r.Date.Format(dateLayout),
		Hours:        &hours,
		Reason:       r.Reason,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}, r.Review)
}

func mapSummaryToResponse(s approval.RequestSummary) approval.RequestResponse {
	return approval.RequestResponse{
		ID:           s.ID,
		Type:         string(s.Type),
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		Status:       string(s.Status),
		StartDate:    s.StartDate.Format(dateLayout),
		EndDate:      s.EndDate.Format(dateLayout),
		Hours:        s.Hours,
		Reason:       s.Reason,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}
