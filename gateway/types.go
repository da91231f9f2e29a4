package gateway

import (
	"time"

	"github.com/alovak/cardvault/messages"
	"github.com/shopspring/decimal"
)

// CardPayload carries payment method fields. Nil fields are not sent, which
// is how partial updates are expressed. A non-nil Custom pointing at an
// empty map is sent as {} and clears the custom payload.
type CardPayload struct {
	Number    *string         `json:"card_number,omitempty"`
	CSC       *string         `json:"cvv,omitempty"`
	Year      *int            `json:"expiry_year,omitempty"`
	Month     *int            `json:"expiry_month,omitempty"`
	FirstName *string         `json:"first_name,omitempty"`
	LastName  *string         `json:"last_name,omitempty"`
	Address1  *string         `json:"address_1,omitempty"`
	Address2  *string         `json:"address_2,omitempty"`
	City      *string         `json:"city,omitempty"`
	State     *string         `json:"state,omitempty"`
	Zip       *string         `json:"zip,omitempty"`
	Custom    *map[string]any `json:"custom,omitempty"`
}

// Method is the gateway-held metadata of a payment method.
type Method struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Retained  bool      `json:"is_retained"`
	Redacted  bool      `json:"is_redacted"`
}

// CardFields are the payment method fields echoed by the gateway. The full
// number and security code are never echoed.
type CardFields struct {
	LastFour  string `json:"last_four_digits"`
	Issuer    string `json:"card_type"`
	Year      int    `json:"expiry_year,omitempty"`
	Month     int    `json:"expiry_month,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// CardResponse is the gateway answer to every payment method action.
type CardResponse struct {
	Token    string         `json:"payment_method_token"`
	Method   *Method        `json:"method,omitempty"`
	Fields   CardFields     `json:"fields"`
	Custom   map[string]any `json:"custom,omitempty"`
	Messages []messages.Raw `json:"messages"`
}

// TransactionPayload is the body of a transaction request.
type TransactionPayload struct {
	PaymentMethodToken string           `json:"payment_method_token,omitempty"`
	Type               string           `json:"type,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Currency           string           `json:"currency_code,omitempty"`
	BillingReference   string           `json:"billing_reference,omitempty"`
	CustomerReference  string           `json:"customer_reference,omitempty"`
	Descriptor         string           `json:"descriptor,omitempty"`
	Custom             map[string]any   `json:"custom,omitempty"`
}

// Receipt is the outcome of a processed transaction.
type Receipt struct {
	TransactionID      string           `json:"transaction_token"`
	ReferenceID        string           `json:"reference_id"`
	Type               string           `json:"transaction_type"`
	Success            bool             `json:"success"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Currency           string           `json:"currency_code"`
	PaymentMethodToken string           `json:"payment_method_token"`
	BillingReference   string           `json:"billing_reference,omitempty"`
	CustomerReference  string           `json:"customer_reference,omitempty"`
	Descriptor         string           `json:"descriptor,omitempty"`
	AVSResultCode      string           `json:"avs_result_code,omitempty"`
	Custom             map[string]any   `json:"custom,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// TransactionResponse is the gateway answer to a transaction request.
type TransactionResponse struct {
	Receipt  Receipt        `json:"receipt"`
	Messages []messages.Raw `json:"messages"`
}

// ErrorResponse is the body the gateway sends with non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// MapPtr returns a pointer to m. A nil m becomes an empty map.
func MapPtr(m map[string]any) *map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	return &m
}
