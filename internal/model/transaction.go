package model

import (
	"math"
	"time"
)

// TransactionType distinguishes money in from money out. The sign of an
// amount is derived from the type at aggregation time; amounts are
// always stored positive.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction represents a transaction in the database. Amounts are
// kept as integer cents so sums stay exact.
type Transaction struct {
	ID          string
	UserID      string
	Type        TransactionType
	AmountCents int64
	Description string
	Category    string
	Date        Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Response converts the transaction to its wire projection.
func (t *Transaction) Response() TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Type:        t.Type,
		Amount:      CentsToAmount(t.AmountCents),
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// AmountToCents converts a wire amount to integer cents, rounding half
// up beyond the second decimal.
func AmountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CentsToAmount converts integer cents back to a wire amount.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// TransactionRequest is the create/update payload.
type TransactionRequest struct {
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required,min=1,max=255"`
	Category    string  `json:"category" validate:"required,min=1,max=100"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Pagination describes the slice of a filtered listing that was returned.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TransactionList is the response body for transaction listings.
type TransactionList struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}
