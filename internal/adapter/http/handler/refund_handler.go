package handler

import (
	"festival-settlement/internal/adapter/http/dto"
	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"
	"festival-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RefundHandler handles the refund request queue.
type RefundHandler struct {
	refundSvc ports.RefundService
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(refundSvc ports.RefundService) *RefundHandler {
	return &RefundHandler{refundSvc: refundSvc}
}

// Create handles POST /api/v1/refund-requests. A customer asks for their
// personal wallet balance to be paid out by bank transfer.
func (h *RefundHandler) Create(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RefundCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	request, err := h.refundSvc.CreateRequest(c.Request.Context(), accountID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List handles GET /api/v1/refund-requests (admin only). The status query
// parameter narrows to PENDING or PROCESSED.
func (h *RefundHandler) List(c *gin.Context) {
	var status *domain.RefundStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.RefundStatus(raw)
		if s != domain.RefundStatusPending && s != domain.RefundStatusProcessed {
			response.Error(c, apperror.Validation("invalid refund status"))
			return
		}
		status = &s
	}

	requests, err := h.refundSvc.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, requests)
}

// Process handles POST /api/v1/refund-requests/:id/process (admin only).
// Drains the customer's live wallet balance and marks the request processed.
func (h *RefundHandler) Process(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid refund request id"))
		return
	}

	result, err := h.refundSvc.Process(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// Delete handles DELETE /api/v1/refund-requests/:id (admin only).
func (h *RefundHandler) Delete(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid refund request id"))
		return
	}

	if err := h.refundSvc.Delete(c.Request.Context(), requestID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
