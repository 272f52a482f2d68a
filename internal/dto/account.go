package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=32"`
	Name            string             `json:"name" binding:"required,max=200"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	NormalSide      domain.Side        `json:"normalSide" binding:"omitempty,oneof=DEBIT CREDIT"` // Optional, defaults from type
	ParentAccountID *string            `json:"parentAccountID"`                                    // Optional, use pointer for nullability
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	NormalSide      domain.Side        `json:"normalSide"`
	Level           int                `json:"level"`
	ParentAccountID string             `json:"parentAccountID"` // Note: Empty string if none
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	parent := ""
	if acc.ParentAccountID != nil {
		parent = *acc.ParentAccountID
	}
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		NormalSide:      acc.NormalSide,
		Level:           acc.Level,
		ParentAccountID: parent,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, ToAccountResponse(&accounts[i]))
	}
	return out
}

// SetAccountMapEntryRequest binds a logical key to an account.
type SetAccountMapEntryRequest struct {
	AccountID string `json:"accountID" binding:"required"`
}
