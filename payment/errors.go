package payment

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	ErrNumberRequired        = errors.New("card number is required")
	ErrCSCRequired           = errors.New("CSC is required")
	ErrTypeRequired          = errors.New("transaction type is required")
	ErrDataRequired          = errors.New("transaction data is required")
	ErrUnknownType           = errors.New("unknown transaction type")
	ErrTransactionIDRequired = errors.New("transaction id is required")
)

const CategorySystem = "system"

// Messages of local precondition errors.
const (
	MsgNoToken            = "Card has no token"
	MsgHasToken           = "Card already has a token"
	MsgCurrencyNotAllowed = "Currency not allowed"
)

// Error is a local precondition failure. No request was sent when an
// action returns it.
type Error struct {
	Category string
	Message  string
	Details  string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Category, e.Message, e.Details)
}

func systemError(msg, details string) *Error {
	return &Error{Category: CategorySystem, Message: msg, Details: details}
}

// AsError unwraps err into a precondition *Error.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
