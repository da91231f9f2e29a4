package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusAuthorized TransactionStatus = "authorized"
	TransactionStatusCaptured   TransactionStatus = "captured"
	TransactionStatusVoided     TransactionStatus = "voided"
	TransactionStatusCredited   TransactionStatus = "credited"
	TransactionStatusReversed   TransactionStatus = "reversed"
	TransactionStatusDeclined   TransactionStatus = "declined"
)

type Transaction struct {
	ID                 string
	ReferenceID        string
	Type               string
	PaymentMethodToken string
	Amount             decimal.Decimal
	Currency           string
	Success            bool
	Status             TransactionStatus
	BillingReference   string
	CustomerReference  string
	Descriptor         string
	AVSResultCode      string
	Custom             map[string]any
	CreatedAt          time.Time
}

// Settled reports whether money moved and was not taken back yet.
func (t *Transaction) Settled() bool {
	return t.Success && t.Status == TransactionStatusCaptured
}
