package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/messages"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
)

// TransactionType names a gateway operation.
type TransactionType string

const (
	TypePurchase  TransactionType = "purchase"
	TypeAuthorize TransactionType = "authorize"
	TypeCapture   TransactionType = "capture"
	TypeVoid      TransactionType = "void"
	TypeCredit    TransactionType = "credit"
	TypeReverse   TransactionType = "reverse"
)

// Creates reports whether t starts a new monetary operation instead of
// referencing an existing transaction.
func (t TransactionType) Creates() bool {
	return t == TypePurchase || t == TypeAuthorize
}

func (t TransactionType) known() bool {
	switch t {
	case TypePurchase, TypeAuthorize, TypeCapture, TypeVoid, TypeCredit, TypeReverse:
		return true
	}
	return false
}

// TransactionData is the payload of a transaction. Type and Currency are
// filled in for purchase and authorize.
type TransactionData struct {
	Amount            *decimal.Decimal
	Currency          string
	Type              string
	BillingReference  string
	CustomerReference string
	Descriptor        string
	Custom            map[string]any
}

// TransactionRequest is the input of NewTransaction. TransactionID is
// required for operations on an existing transaction.
type TransactionRequest struct {
	Type          TransactionType
	TransactionID string
	Data          *TransactionData
}

// Transaction is one gateway operation run against a card.
type Transaction struct {
	client *Client
	logger *slog.Logger

	typ      TransactionType
	id       string
	data     TransactionData
	path     string
	receipt  *gateway.Receipt
	messages messages.Groups
}

func (c *Client) NewTransaction(req TransactionRequest) (*Transaction, error) {
	if req.Type == "" {
		return nil, ErrTypeRequired
	}
	if req.Data == nil {
		return nil, ErrDataRequired
	}
	if !req.Type.known() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, req.Type)
	}
	if !req.Type.Creates() && req.TransactionID == "" {
		return nil, fmt.Errorf("%w for %s", ErrTransactionIDRequired, req.Type)
	}

	data := *req.Data
	data.Custom = copyMap(req.Data.Custom)

	t := &Transaction{
		client: c,
		typ:    req.Type,
		id:     req.TransactionID,
		data:   data,
	}
	if req.Type.Creates() {
		t.data.Type = string(req.Type)
		if t.data.Currency == "" {
			t.data.Currency = c.cfg.DefaultCurrency
		}
		t.path = string(req.Type)
	} else {
		t.path = "transactions/" + req.TransactionID + "/" + string(req.Type)
	}
	t.logger = c.logger.With(slog.String("transaction_type", string(t.typ)))
	return t, nil
}

func (t *Transaction) Type() TransactionType { return t.typ }

func (t *Transaction) TransactionID() string { return t.id }

// Data returns a copy of the payload as it will be sent.
func (t *Transaction) Data() TransactionData {
	d := t.data
	d.Custom = copyMap(t.data.Custom)
	return d
}

// Path is the operation reference handed to the transport.
func (t *Transaction) Path() string { return t.path }

// Receipt is nil until Process succeeds.
func (t *Transaction) Receipt() *gateway.Receipt { return t.receipt }

func (t *Transaction) Messages() messages.Groups { return t.messages }

// Success reports whether the transaction was processed and approved.
func (t *Transaction) Success() bool {
	return t.receipt != nil && t.receipt.Success
}

// Process runs the transaction against card. A card without a token or a
// currency outside the allowed set fail with *Error before anything is
// sent. A declined transaction is not an error: check Success and the
// error messages.
func (t *Transaction) Process(ctx context.Context, card *Card) error {
	if card == nil || card.Token() == "" {
		return systemError(MsgNoToken, "")
	}
	if t.data.Currency != "" && !t.client.cfg.CurrencyAllowed(t.data.Currency) {
		return systemError(MsgCurrencyNotAllowed, t.data.Currency)
	}

	payload := gateway.TransactionPayload{
		PaymentMethodToken: card.Token(),
		Type:               t.data.Type,
		Amount:             t.data.Amount,
		Currency:           strings.ToUpper(t.data.Currency),
		BillingReference:   t.data.BillingReference,
		CustomerReference:  t.data.CustomerReference,
		Descriptor:         t.data.Descriptor,
		Custom:             copyMap(t.data.Custom),
	}

	resp, err := t.client.transport.SubmitTransaction(ctx, gateway.TransactionRequest{
		Path:    t.path,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	receipt := resp.Receipt
	t.receipt = &receipt
	t.messages = messages.TranslateAll(resp.Messages, t.client.language())

	t.logger.Debug("transaction processed",
		slog.String("transaction_id", receipt.TransactionID),
		slog.Bool("success", receipt.Success),
	)
	return nil
}
