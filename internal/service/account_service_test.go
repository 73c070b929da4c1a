package service

import (
	"context"
	"testing"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type accountTestDeps struct {
	svc         *AccountServiceImpl
	accountRepo *mocks.MockAccountRepository
	bankRepo    *mocks.MockBankRepository
	encSvc      *mocks.MockEncryptionService
	ctrl        *gomock.Controller
}

func setupAccountService(t *testing.T) *accountTestDeps {
	ctrl := gomock.NewController(t)
	d := &accountTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		bankRepo:    mocks.NewMockBankRepository(ctrl),
		encSvc:      mocks.NewMockEncryptionService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAccountService(d.accountRepo, d.bankRepo, d.encSvc)
	return d
}

func TestAccountService_LookupByEmail(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := &domain.Account{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}

	d.accountRepo.EXPECT().GetByEmail(ctx, "alice@example.com").Return(account, nil)

	got, err := d.svc.LookupByEmail(ctx, " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestAccountService_LookupByEmail_NotFound(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, nil)

	_, err := d.svc.LookupByEmail(ctx, "ghost@example.com")
	assertAppErrCode(t, err, "SET_007")
}

func TestAccountService_LookupByEmail_EmptyEmail(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.LookupByEmail(context.Background(), "   ")
	assertAppErrCode(t, err, "SET_005")
}

func TestAccountService_UpdateBankDetails(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	account := &domain.Account{ID: accountID, Email: "alice@example.com"}

	d.accountRepo.EXPECT().GetByID(ctx, accountID).Return(account, nil)
	d.encSvc.EXPECT().Encrypt("110-1234-5678").Return("enc:abcdef", nil)
	d.accountRepo.EXPECT().UpdateBankDetails(ctx, accountID, "First National", "enc:abcdef").Return(nil)

	err := d.svc.UpdateBankDetails(ctx, accountID, "First National", "110-1234-5678")
	require.NoError(t, err)
}

func TestAccountService_UpdateBankDetails_EncryptionFailure(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()

	d.accountRepo.EXPECT().GetByID(ctx, accountID).Return(&domain.Account{ID: accountID}, nil)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("", assert.AnError)

	err := d.svc.UpdateBankDetails(ctx, accountID, "First National", "110-1234-5678")
	assertAppErrCode(t, err, "SYS_002")
}

func TestAccountService_UpdateBankDetails_MissingFields(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	err := d.svc.UpdateBankDetails(context.Background(), uuid.New(), "", "110-1234-5678")
	assertAppErrCode(t, err, "SET_005")

	err = d.svc.UpdateBankDetails(context.Background(), uuid.New(), "First National", "")
	assertAppErrCode(t, err, "SET_005")
}

func TestAccountService_ListBanks(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.bankRepo.EXPECT().List(ctx).Return([]domain.Bank{
		{Code: "001", Name: "First National"},
		{Code: "002", Name: "Harbor Credit Union"},
	}, nil)

	banks, err := d.svc.ListBanks(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "First National", banks[0].Name)
}
