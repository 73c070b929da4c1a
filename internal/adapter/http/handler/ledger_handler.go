package handler

import (
	"festival-settlement/internal/adapter/http/middleware"
	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"
	"festival-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler exposes the append-only ledger, read side only.
type LedgerHandler struct {
	ledgerRepo ports.LedgerRepository
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerRepo ports.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{ledgerRepo: ledgerRepo}
}

// List handles GET /api/v1/ledger. Non-admin callers only ever see their own
// entries; an admin may pass account_id to inspect any account. The type
// query parameter narrows by entry type.
func (h *LedgerHandler) List(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	filter := ports.LedgerFilter{AccountID: &accountID}

	if raw := c.Query("account_id"); raw != "" {
		role, _ := c.Get(middleware.CtxRole)
		if role != domain.RoleAdmin {
			response.Error(c, apperror.ErrForbidden())
			return
		}
		target, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid account_id"))
			return
		}
		filter.AccountID = &target
	}

	if raw := c.Query("type"); raw != "" {
		t := domain.LedgerEntryType(raw)
		switch t {
		case domain.LedgerEntryTopup, domain.LedgerEntryPayment,
			domain.LedgerEntryCommission, domain.LedgerEntryRefund:
			filter.Type = &t
		default:
			response.Error(c, apperror.Validation("invalid ledger entry type"))
			return
		}
	}

	entries, err := h.ledgerRepo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	response.OK(c, entries)
}
