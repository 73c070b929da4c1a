package handler

import (
	"festival-settlement/internal/adapter/http/dto"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"
	"festival-settlement/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles the account directory and bank details endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Lookup handles GET /api/v1/accounts/lookup. Staff resolve a customer by
// email before settling their bill.
func (h *AccountHandler) Lookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, apperror.Validation("email query parameter is required"))
		return
	}

	account, err := h.accountSvc.LookupByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if account == nil {
		response.Error(c, apperror.ErrNotFound("account"))
		return
	}

	response.OK(c, toAccountResponse(account))
}

// UpdateBankDetails handles PUT /api/v1/accounts/me/bank-details. The
// account number is encrypted before it reaches storage.
func (h *AccountHandler) UpdateBankDetails(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.accountSvc.UpdateBankDetails(c.Request.Context(), accountID, req.BankName, req.BankNumber); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListBanks handles GET /api/v1/banks, the display-only bank catalog.
func (h *AccountHandler) ListBanks(c *gin.Context) {
	banks, err := h.accountSvc.ListBanks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, banks)
}
