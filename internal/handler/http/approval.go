package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ApprovalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	GetMyToilBalance(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.Service
}

func NewApprovalHandler(approvalService approval.Service) ApprovalHandler {
	return &approvalHandlerImpl{
		approvalService: approvalService,
	}
}

func requestTypeParam(r *http.Request) (approval.RequestType, bool) {
	return approval.ParseRequestType(chi.URLParam(r, "type"))
}

// Create handles POST /requests/{type}
func (h *approvalHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	requestType, ok := requestTypeParam(r)
	if !ok {
		response.HandleError(w, approval.ErrUnknownRequestType)
		return
	}

	var (
		result approval.RequestResponse
		err    error
	)
	switch requestType {
	case approval.TypeLeave:
		var req approval.CreateLeaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		result, err = h.approvalService.CreateLeave(r.Context(), req)
	case approval.TypeOvertime:
		var req approval.CreateOvertimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		result, err = h.approvalService.CreateOvertime(r.Context(), req)
	case approval.TypeTimeOff:
		var req approval.CreateTimeOffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		result, err = h.approvalService.CreateTimeOff(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Request submitted successfully", result)
}

// Get handles GET /requests/{type}/{id}
func (h *approvalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	requestType, ok := requestTypeParam(r)
	if !ok {
		response.HandleError(w, approval.ErrUnknownRequestType)
		return
	}

	result, err := h.approvalService.Get(r.Context(), requestType, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func requestFilterFromQuery(r *http.Request) approval.RequestFilter {
	return approval.RequestFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Type:       optionalQuery(r, "type"),
		Status:     optionalQuery(r, "status"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
}

// ListMine handles GET /requests/my
func (h *approvalHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	results, err := h.approvalService.ListMine(r.Context(), requestFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeRequestPage(w, results)
}

// List handles GET /requests
func (h *approvalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.approvalService.List(r.Context(), requestFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeRequestPage(w, results)
}

// Approve handles POST /requests/{type}/{id}/approve
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	requestType, ok := requestTypeParam(r)
	if !ok {
		response.HandleError(w, approval.ErrUnknownRequestType)
		return
	}

	var req approval.ApproveRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Type = requestType
	req.ID = chi.URLParam(r, "id")

	result, err := h.approvalService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request approved successfully", result)
}

// Reject handles POST /requests/{type}/{id}/reject
func (h *approvalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	requestType, ok := requestTypeParam(r)
	if !ok {
		response.HandleError(w, approval.ErrUnknownRequestType)
		return
	}

	var req approval.RejectRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Type = requestType
	req.ID = chi.URLParam(r, "id")

	result, err := h.approvalService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request rejected successfully", result)
}

// GetMyToilBalance handles GET /toil/balance
func (h *approvalHandlerImpl) GetMyToilBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvalService.GetMyToilBalance(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func writeRequestPage(w http.ResponseWriter, page approval.ListRequestResponse) {
	items := page.Requests
	if items == nil {
		items = []approval.RequestResponse{}
	}
	response.SuccessWithMeta(w, items, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: page.TotalCount,
		TotalPages: page.TotalPages,
	})
}
