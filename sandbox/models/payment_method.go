package models

import (
	"time"

	"github.com/alovak/cardvault/messages"
)

// PaymentMethod is a tokenized card. The full number is never kept: only
// its BIN, last four digits and keyed hash. The CSC is not stored at all.
type PaymentMethod struct {
	Token    string
	BIN      string
	LastFour string
	PANHash  []byte
	Issuer   string

	Year  int
	Month int

	FirstName string
	LastName  string
	Address1  string
	Address2  string
	City      string
	State     string
	Zip       string

	Custom map[string]any
	// Messages are the validation results of the stored card data.
	Messages []messages.Raw

	Retained  bool
	Redacted  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether the stored card data passed validation.
func (pm *PaymentMethod) Valid() bool {
	for _, m := range pm.Messages {
		if m.Class == messages.ClassError {
			return false
		}
	}
	return true
}
