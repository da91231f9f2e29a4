// Package gateway is the boundary between the card/transaction domain and
// the tokenization service. It defines the wire types, the Transport
// contract consumed by package payment, and an HTTP implementation of it.
package gateway

import "context"

//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks

// Transport submits normalized payloads to the gateway. A returned error
// means the request itself failed; business outcomes (invalid card,
// declined transaction) come back as raw messages in a successful response.
type Transport interface {
	SubmitCard(ctx context.Context, action CardAction, req CardRequest) (*CardResponse, error)
	SubmitTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error)
}

// CardAction names a payment method operation.
type CardAction string

const (
	ActionCreate CardAction = "create"
	ActionLoad   CardAction = "load"
	ActionUpdate CardAction = "update"
	ActionRetain CardAction = "retain"
	ActionRedact CardAction = "redact"
)

// CardRequest is the input of SubmitCard. Token is empty only for create.
type CardRequest struct {
	Token   string
	Payload CardPayload
}

// TransactionRequest is the input of SubmitTransaction.
//
// Path is either an operation name ("purchase", "authorize"), which is run
// against the configured processor, or "transactions/<id>/<operation>" for
// operations on an existing transaction.
type TransactionRequest struct {
	Path    string
	Payload TransactionPayload
}
