package approval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
)

type ApprovalServiceImpl struct {
	tx postgresql.Transactor
	approval.LeaveRequestRepository
	approval.OvertimeRequestRepository
	approval.TimeOffRequestRepository
	approval.RequestRepository
	approval.ToilBalanceRepository
	employee.EmployeeRepository

	now func() time.Time
}

func NewApprovalService(
	tx postgresql.Transactor,
	leaveRepository approval.LeaveRequestRepository,
	overtimeRepository approval.OvertimeRequestRepository,
	timeOffRepository approval.TimeOffRequestRepository,
	requestRepository approval.RequestRepository,
	toilRepository approval.ToilBalanceRepository,
	employeeRepository employee.EmployeeRepository,
) approval.Service {
	return &ApprovalServiceImpl{
		tx:                        tx,
		LeaveRequestRepository:    leaveRepository,
		OvertimeRequestRepository: overtimeRepository,
		TimeOffRequestRepository:  timeOffRepository,
		RequestRepository:         requestRepository,
		ToilBalanceRepository:     toilRepository,
		EmployeeRepository:        employeeRepository,
		now:                       time.Now,
	}
}

// requester returns the calling actor, who must be an active employee
func (s *ApprovalServiceImpl) requester(ctx context.Context) (user.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.HasEmployee() {
		return user.Actor{}, user.ErrEmployeeProfileRequired
	}
	active, err := s.EmployeeRepository.ExistsActive(ctx, actor.EmployeeID)
	if err != nil {
		return user.Actor{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if !active {
		return user.Actor{}, employee.ErrEmployeeInactive
	}
	return actor, nil
}

// CreateLeave implements approval.Service.
func (s *ApprovalServiceImpl) CreateLeave(ctx context.Context, req approval.CreateLeaveRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor, err := s.requester(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	created, err := s.LeaveRequestRepository.Create(ctx, approval.LeaveRequest{
		EmployeeID: actor.EmployeeID,
		LeaveType:  approval.LeaveType(req.LeaveType),
		StartDate:  req.Start,
		EndDate:    req.End,
		Reason:     req.Reason,
	})
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return mapLeaveToResponse(created), nil
}

// CreateOvertime implements approval.Service.
func (s *ApprovalServiceImpl) CreateOvertime(ctx context.Context, req approval.CreateOvertimeRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor, err := s.requester(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	created, err := s.OvertimeRequestRepository.Create(ctx, approval.OvertimeRequest{
		EmployeeID: actor.EmployeeID,
		WorkDate:   req.Date,
		Hours:      req.Hours,
		Reason:     req.Reason,
	})
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return mapOvertimeToResponse(created), nil
}

// CreateTimeOff implements approval.Service.
// The balance is checked up front so obviously unfundable requests never reach an approver.
func (s *ApprovalServiceImpl) CreateTimeOff(ctx context.Context, req approval.CreateTimeOffRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor, err := s.requester(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	balance, err := s.ToilBalanceRepository.Get(ctx, actor.EmployeeID)
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to get TOIL balance: %w", err)
	}
	if balance.Available() < req.Hours {
		return approval.RequestResponse{}, approval.ErrInsufficientToilBalance
	}

	created, err := s.TimeOffRequestRepository.Create(ctx, approval.TimeOffRequest{
		EmployeeID: actor.EmployeeID,
		Date:       req.Date,
		Hours:      req.Hours,
		Reason:     req.Reason,
	})
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to create time-off request: %w", err)
	}
	return mapTimeOffToResponse(created), nil
}

// Get implements approval.Service.
func (s *ApprovalServiceImpl) Get(ctx context.Context, requestType approval.RequestType, id string) (approval.RequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	var resp approval.RequestResponse
	switch requestType {
	case approval.TypeLeave:
		r, err := s.LeaveRequestRepository.GetByID(ctx, id)
		if err != nil {
			return approval.RequestResponse{}, err
		}
		resp = mapLeaveToResponse(r)
	case approval.TypeOvertime:
		r, err := s.OvertimeRequestRepository.GetByID(ctx, id)
		if err != nil {
			return approval.RequestResponse{}, err
		}
		resp = mapOvertimeToResponse(r)
	case approval.TypeTimeOff:
		r, err := s.TimeOffRequestRepository.GetByID(ctx, id)
		if err != nil {
			return approval.RequestResponse{}, err
		}
		resp = mapTimeOffToResponse(r)
	default:
		return approval.RequestResponse{}, approval.ErrUnknownRequestType
	}

	if !actor.IsManager() && resp.EmployeeID != actor.EmployeeID {
		return approval.RequestResponse{}, approval.ErrRequestForbidden
	}
	return resp, nil
}

// ListMine implements approval.Service.
func (s *ApprovalServiceImpl) ListMine(ctx context.Context, filter approval.RequestFilter) (approval.ListRequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return approval.ListRequestResponse{}, err
	}
	if !actor.HasEmployee() {
		return approval.ListRequestResponse{}, user.ErrEmployeeProfileRequired
	}
	filter.EmployeeID = nil
	if err := filter.Validate(); err != nil {
		return approval.ListRequestResponse{}, err
	}
	employeeID := actor.EmployeeID
	filter.EmployeeID = &employeeID

	return s.list(ctx, filter)
}

// List implements approval.Service.
func (s *ApprovalServiceImpl) List(ctx context.Context, filter approval.RequestFilter) (approval.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return approval.ListRequestResponse{}, err
	}
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return approval.ListRequestResponse{}, err
	}
	if !actor.IsManager() {
		return approval.ListRequestResponse{}, user.ErrManagerAccessRequired
	}

	return s.list(ctx, filter)
}

func (s *ApprovalServiceImpl) list(ctx context.Context, filter approval.RequestFilter) (approval.ListRequestResponse, error) {
	summaries, total, err := s.RequestRepository.List(ctx, filter)
	if err != nil {
		return approval.ListRequestResponse{}, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]approval.RequestResponse, 0, len(summaries))
	for _, summary := range summaries {
		requests = append(requests, mapSummaryToResponse(summary))
	}

	return approval.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   requests,
	}, nil
}

// Approve implements approval.Service.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, req approval.ApproveRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor, err := s.approver(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	decision := approval.Decision{
		Action:     approval.ActionApprove,
		ApproverID: actor.UserID,
		DecidedAt:  s.now().UTC(),
		Notes:      req.Notes,
	}
	return s.decide(ctx, req.Type, req.ID, decision, req.ToilHoursAwarded)
}

// Reject implements approval.Service.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, req approval.RejectRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor, err := s.approver(ctx)
	if err != nil {
		return approval.RequestResponse{}, err
	}

	reason := req.Reason
	decision := approval.Decision{
		Action:     approval.ActionReject,
		ApproverID: actor.UserID,
		DecidedAt:  s.now().UTC(),
		Reason:     &reason,
	}
	return s.decide(ctx, req.Type, req.ID, decision, nil)
}

func (s *ApprovalServiceImpl) approver(ctx context.Context) (user.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.CanApprove() {
		return user.Actor{}, approval.ErrApprovalPermissionDenied
	}
	return actor, nil
}

// decide applies the decision and its TOIL side effect in one transaction
func (s *ApprovalServiceImpl) decide(ctx context.Context, requestType approval.RequestType, id string, d approval.Decision, award *float64) (approval.RequestResponse, error) {
	var resp approval.RequestResponse

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		switch requestType {
		case approval.TypeLeave:
			r, err := s.LeaveRequestRepository.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.Decide(d); err != nil {
				return err
			}
			if err := s.LeaveRequestRepository.UpdateReview(ctx, &r); err != nil {
				return err
			}
			resp = mapLeaveToResponse(r)

		case approval.TypeOvertime:
			r, err := s.OvertimeRequestRepository.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.Decide(d); err != nil {
				return err
			}
			if r.Status == approval.StatusApproved {
				hours := r.Hours
				if award != nil {
					hours = *award
				}
				r.ToilHoursAwarded = &hours
			}
			if err := s.OvertimeRequestRepository.UpdateReview(ctx, &r); err != nil {
				return err
			}
			if r.ToilHoursAwarded != nil && *r.ToilHoursAwarded > 0 {
				if _, err := s.ToilBalanceRepository.Credit(ctx, r.EmployeeID, *r.ToilHoursAwarded); err != nil {
					return err
				}
			}
			resp = mapOvertimeToResponse(r)

		case approval.TypeTimeOff:
			r, err := s.TimeOffRequestRepository.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.Decide(d); err != nil {
				return err
			}
			if err := s.TimeOffRequestRepository.UpdateReview(ctx, &r); err != nil {
				return err
			}
			if r.Status == approval.StatusApproved {
				if _, err := s.ToilBalanceRepository.Debit(ctx, r.EmployeeID, r.Hours); err != nil {
					return err
				}
			}
			resp = mapTimeOffToResponse(r)

		default:
			return approval.ErrUnknownRequestType
		}
		return nil
	})
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to %s request: %w", d.Action, err)
	}
	return resp, nil
}

// GetMyToilBalance implements approval.Service.
func (s *ApprovalServiceImpl) GetMyToilBalance(ctx context.Context) (approval.ToilBalanceResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return approval.ToilBalanceResponse{}, err
	}
	if !actor.HasEmployee() {
		return approval.ToilBalanceResponse{}, user.ErrEmployeeProfileRequired
	}

	balance, err := s.ToilBalanceRepository.Get(ctx, actor.EmployeeID)
	if err != nil {
		return approval.ToilBalanceResponse{}, fmt.Errorf("failed to get TOIL balance: %w", err)
	}
	return approval.ToilBalanceResponse{
		EmployeeID:     balance.EmployeeID,
		EarnedHours:    balance.EarnedHours,
		UsedHours:      balance.UsedHours,
		AvailableHours: balance.Available(),
	}, nil
}
