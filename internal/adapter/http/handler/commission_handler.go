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

// CommissionHandler handles festival commission endpoints (admin only).
type CommissionHandler struct {
	commissionSvc ports.CommissionService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissionSvc ports.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionSvc: commissionSvc}
}

// Status handles GET /api/v1/festivals/:id/commission, reporting the
// festival's revenue, whether the commission was withdrawn, and the profit
// after commission.
func (h *CommissionHandler) Status(c *gin.Context) {
	festivalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid festival id"))
		return
	}

	status, err := h.commissionSvc.Status(c.Request.Context(), festivalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, status)
}

// Withdraw handles POST /api/v1/festivals/:id/commission. The commission is
// withdrawable exactly once per festival.
func (h *CommissionHandler) Withdraw(c *gin.Context) {
	adminID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	festivalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid festival id"))
		return
	}

	var req dto.CommissionWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.RatePercent == 0 {
		req.RatePercent = domain.CommissionRateDefault
	}

	withdrawal, err := h.commissionSvc.Withdraw(c.Request.Context(), festivalID, req.RatePercent, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, withdrawal)
}
