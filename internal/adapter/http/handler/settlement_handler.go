package handler

import (
	"festival-settlement/internal/adapter/http/dto"
	"festival-settlement/internal/adapter/http/middleware"
	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"
	"festival-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles checkout settlement endpoints.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// Settle handles POST /api/v1/settlements. The authenticated staff member
// settles a customer's bill at a booth.
func (h *SettlementHandler) Settle(c *gin.Context) {
	if _, ok := c.Get(middleware.CtxAccountID); !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer_id"))
		return
	}
	boothID, err := uuid.Parse(req.BoothID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid booth_id"))
		return
	}

	var festivalID *uuid.UUID
	if req.FestivalID != nil {
		id, err := uuid.Parse(*req.FestivalID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid festival_id"))
			return
		}
		festivalID = &id
	}

	lines := make([]domain.BillLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		menuItemID, err := uuid.Parse(l.MenuItemID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid menu_item_id"))
			return
		}
		lines = append(lines, domain.BillLine{
			MenuItemID: menuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
	}

	result, err := h.settlementSvc.Settle(c.Request.Context(), ports.SettlementRequest{
		CustomerID:  customerID,
		BoothID:     boothID,
		FestivalID:  festivalID,
		ReferenceID: req.ReferenceID,
		Lines:       lines,
		Method:      domain.PaymentMethod(req.Method),
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ConfirmReturn handles POST /api/v1/settlements/return, the gateway's
// signed return callback after a bank-transfer checkout.
func (h *SettlementHandler) ConfirmReturn(c *gin.Context) {
	var req dto.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid order_id"))
		return
	}

	result, err := h.settlementSvc.ConfirmReturn(c.Request.Context(), ports.ReturnRequest{
		OrderID:   orderID,
		SessionID: req.SessionID,
		Signature: req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}
