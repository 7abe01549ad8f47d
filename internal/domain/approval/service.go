package approval

import "context"

type Service interface {
	CreateLeave(ctx context.Context, req CreateLeaveRequest) (RequestResponse, error)
	CreateOvertime(ctx context.Context, req CreateOvertimeRequest) (RequestResponse, error)
	CreateTimeOff(ctx context.Context, req CreateTimeOffRequest) (RequestResponse, error)

	Get(ctx context.Context, requestType RequestType, id string) (RequestResponse, error)
	ListMine(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	List(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)

	Approve(ctx context.Context, req ApproveRequest) (RequestResponse, error)
	Reject(ctx context.Context, req RejectRequest) (RequestResponse, error)

	GetMyToilBalance(ctx context.Context) (ToilBalanceResponse, error)
}
