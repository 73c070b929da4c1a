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

// WalletHandler handles wallet balance and topup endpoints.
type WalletHandler struct {
	walletRepo    ports.WalletRepository
	settlementSvc ports.SettlementService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletRepo ports.WalletRepository, settlementSvc ports.SettlementService) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, settlementSvc: settlementSvc}
}

// GetBalance handles GET /api/v1/wallets/balance. With a festival_id query
// parameter it reads the caller's festival sub-wallet, otherwise the
// personal wallet. A wallet that was never funded reads as zero.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var (
		wallet *domain.Wallet
		err    error
	)
	kind := domain.WalletKindPersonal
	if raw := c.Query("festival_id"); raw != "" {
		kind = domain.WalletKindFestival
		festivalID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			response.Error(c, apperror.Validation("invalid festival_id"))
			return
		}
		wallet, err = h.walletRepo.GetFestival(c.Request.Context(), accountID, festivalID)
	} else {
		wallet, err = h.walletRepo.GetPersonal(c.Request.Context(), accountID)
	}
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if wallet == nil {
		// Lazy creation: an unfunded wallet simply reads as zero.
		response.OK(c, dto.WalletBalanceResponse{Kind: string(kind), Balance: 0})
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		WalletID: wallet.ID.String(),
		Kind:     string(wallet.Kind),
		Balance:  wallet.Balance,
	})
}

// Topup handles POST /api/v1/wallets/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.settlementSvc.Topup(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		WalletID: wallet.ID.String(),
		Kind:     string(wallet.Kind),
		Balance:  wallet.Balance,
	})
}

// accountIDFromContext extracts the authenticated account ID set by JWTAuth.
func accountIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.CtxAccountID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
