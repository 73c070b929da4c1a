package service

import (
	"context"
	"fmt"
	"strings"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
)

// AccountServiceImpl implements ports.AccountService: the account directory
// used by booth staff (customer lookup) and customers (bank-transfer details).
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	bankRepo    ports.BankRepository
	encSvc      ports.EncryptionService
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	accountRepo ports.AccountRepository,
	bankRepo ports.BankRepository,
	encSvc ports.EncryptionService,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		bankRepo:    bankRepo,
		encSvc:      encSvc,
	}
}

// LookupByEmail finds a customer by email for booth staff checkout.
func (s *AccountServiceImpl) LookupByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.Validation("email is required")
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// UpdateBankDetails stores a customer's refund destination. The account
// number is AES-encrypted at rest.
func (s *AccountServiceImpl) UpdateBankDetails(ctx context.Context, accountID uuid.UUID, bankName, bankNumber string) error {
	if bankName == "" || bankNumber == "" {
		return apperror.Validation("bank name and number are required")
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return apperror.ErrNotFound("Account")
	}

	encrypted, err := s.encSvc.Encrypt(bankNumber)
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt bank number: %w", err))
	}

	if err := s.accountRepo.UpdateBankDetails(ctx, accountID, bankName, encrypted); err != nil {
		return apperror.InternalError(fmt.Errorf("update bank details: %w", err))
	}
	return nil
}

// ListBanks returns the display-only bank catalog.
func (s *AccountServiceImpl) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	banks, err := s.bankRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list banks: %w", err))
	}
	return banks, nil
}
