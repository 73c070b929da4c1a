package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletKind distinguishes the three balance stores in the system.
type WalletKind string

const (
	WalletKindPersonal WalletKind = "PERSONAL"
	WalletKindFestival WalletKind = "FESTIVAL"
	WalletKindBooth    WalletKind = "BOOTH"
)

// Wallet is a keyed balance record. A personal wallet belongs to one account,
// a festival sub-wallet to one (account, festival) pair, a booth wallet to one
// booth. Balances are in currency minor units and never observed below zero;
// the storage layer rejects any delta that would drive a balance negative.
type Wallet struct {
	ID         uuid.UUID  `json:"id"`
	Kind       WalletKind `json:"kind"`
	AccountID  *uuid.UUID `json:"account_id,omitempty"`  // PERSONAL, FESTIVAL
	FestivalID *uuid.UUID `json:"festival_id,omitempty"` // FESTIVAL
	BoothID    *uuid.UUID `json:"booth_id,omitempty"`    // BOOTH
	Balance    int64      `json:"balance"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewPersonalWallet returns a zero-balance personal wallet for an account.
// Wallets are created lazily on first access.
func NewPersonalWallet(accountID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		Kind:      WalletKindPersonal,
		AccountID: &accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFestivalWallet returns a zero-balance sub-wallet scoped to one
// (account, festival) pair.
func NewFestivalWallet(accountID, festivalID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		ID:         uuid.New(),
		Kind:       WalletKindFestival,
		AccountID:  &accountID,
		FestivalID: &festivalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewBoothWallet returns a zero-balance revenue wallet for a booth.
func NewBoothWallet(boothID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		Kind:      WalletKindBooth,
		BoothID:   &boothID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanCover reports whether the wallet holds at least amount.
func (w *Wallet) CanCover(amount int64) bool {
	return w.Balance >= amount
}
