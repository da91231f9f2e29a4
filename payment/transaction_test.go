package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/messages"
	"github.com/alovak/cardvault/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func createdCard(t *testing.T, client *payment.Client) *payment.Card {
	t.Helper()
	card, err := client.NewCard(payment.CardData{Token: "0123456789abcdef01234567"})
	require.NoError(t, err)
	return card
}

func TestNewTransaction_Required(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.NewTransaction(payment.TransactionRequest{Data: &payment.TransactionData{Amount: amount("10")}})
	require.ErrorIs(t, err, payment.ErrTypeRequired)

	_, err = client.NewTransaction(payment.TransactionRequest{Type: payment.TypePurchase})
	require.ErrorIs(t, err, payment.ErrDataRequired)

	_, err = client.NewTransaction(payment.TransactionRequest{Type: "refund", Data: &payment.TransactionData{}})
	require.ErrorIs(t, err, payment.ErrUnknownType)

	_, err = client.NewTransaction(payment.TransactionRequest{Type: payment.TypeVoid, Data: &payment.TransactionData{}})
	require.ErrorIs(t, err, payment.ErrTransactionIDRequired)
}

func TestNewTransaction_PurchaseGetsTypeAndCurrency(t *testing.T) {
	client, _ := newClient(t)

	data := &payment.TransactionData{Amount: amount("10")}
	tx, err := client.NewTransaction(payment.TransactionRequest{Type: payment.TypePurchase, Data: data})
	require.NoError(t, err)

	require.Equal(t, payment.TypePurchase, tx.Type())
	require.Equal(t, "purchase", tx.Data().Type)
	require.Equal(t, "USD", tx.Data().Currency)
	require.Equal(t, "purchase", tx.Path())
	require.Nil(t, tx.Receipt())

	// caller data is not modified
	require.Empty(t, data.Type)
	require.Empty(t, data.Currency)

	tx, err = client.NewTransaction(payment.TransactionRequest{
		Type: payment.TypeAuthorize,
		Data: &payment.TransactionData{Amount: amount("10"), Currency: "EUR"},
	})
	require.NoError(t, err)
	require.Equal(t, "EUR", tx.Data().Currency)
	require.Equal(t, "authorize", tx.Path())
}

func TestNewTransaction_ReferencingOperationsAreNotInjected(t *testing.T) {
	client, _ := newClient(t)

	for _, typ := range []payment.TransactionType{payment.TypeCapture, payment.TypeVoid, payment.TypeCredit, payment.TypeReverse} {
		tx, err := client.NewTransaction(payment.TransactionRequest{
			Type:          typ,
			TransactionID: "111111111111111111111111",
			Data:          &payment.TransactionData{},
		})
		require.NoError(t, err)
		require.Empty(t, tx.Data().Currency, typ)
		require.Empty(t, tx.Data().Type, typ)
		require.Equal(t, "transactions/111111111111111111111111/"+string(typ), tx.Path())
	}
}

func TestTransaction_Process(t *testing.T) {
	client, transport := newClient(t)
	card := createdCard(t, client)

	tx, err := client.NewTransaction(payment.TransactionRequest{
		Type: payment.TypePurchase,
		Data: &payment.TransactionData{
			Amount:            amount("10"),
			BillingReference:  "123",
			CustomerReference: "123",
			Custom:            map[string]any{"test": "custom"},
		},
	})
	require.NoError(t, err)

	transport.EXPECT().
		SubmitTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gateway.TransactionRequest) (*gateway.TransactionResponse, error) {
			require.Equal(t, "purchase", req.Path)
			require.Equal(t, card.Token(), req.Payload.PaymentMethodToken)
			require.Equal(t, "purchase", req.Payload.Type)
			require.Equal(t, "USD", req.Payload.Currency)
			require.True(t, req.Payload.Amount.Equal(decimal.NewFromInt(10)))

			return &gateway.TransactionResponse{
				Receipt: gateway.Receipt{
					TransactionID:      "aaaaaaaaaaaaaaaaaaaaaaaa",
					Type:               "purchase",
					Success:            true,
					Amount:             req.Payload.Amount,
					Currency:           req.Payload.Currency,
					PaymentMethodToken: req.Payload.PaymentMethodToken,
					Custom:             req.Payload.Custom,
				},
				Messages: []messages.Raw{
					{Class: messages.ClassInfo, Context: "processor.transaction", Key: "success"},
					{Class: messages.ClassInfo, Context: "processor.avs_result_code", Key: "Y"},
				},
			}, nil
		})

	require.NoError(t, tx.Process(context.Background(), card))
	require.NotNil(t, tx.Receipt())
	require.True(t, tx.Success())
	require.Equal(t, "custom", tx.Receipt().Custom["test"])
	require.Contains(t, tx.Messages().Info["transaction"], str(messages.Success))
	require.Equal(t, []string{"Y: " + str(messages.Good)}, tx.Messages().Info["avs"])
	require.False(t, tx.Messages().HasErrors())
}

func TestTransaction_DeclineIsNotAnError(t *testing.T) {
	client, transport := newClient(t)
	card := createdCard(t, client)

	tx, err := client.NewTransaction(payment.TransactionRequest{
		Type: payment.TypePurchase,
		Data: &payment.TransactionData{Amount: amount("10")},
	})
	require.NoError(t, err)

	transport.EXPECT().SubmitTransaction(gomock.Any(), gomock.Any()).Return(&gateway.TransactionResponse{
		Receipt: gateway.Receipt{Success: false},
		Messages: []messages.Raw{
			{Class: messages.ClassError, Context: "processor.transaction", Key: "declined"},
		},
	}, nil)

	require.NoError(t, tx.Process(context.Background(), card))
	require.NotNil(t, tx.Receipt())
	require.False(t, tx.Success())
	require.Contains(t, tx.Messages().Errors["transaction"], str(messages.Declined))
}

func TestTransaction_CurrencyNotAllowed(t *testing.T) {
	client, _ := newClient(t)
	card := createdCard(t, client)

	tx, err := client.NewTransaction(payment.TransactionRequest{
		Type: payment.TypePurchase,
		Data: &payment.TransactionData{Amount: amount("10"), Currency: "GBP"},
	})
	require.NoError(t, err)

	err = tx.Process(context.Background(), card)
	pe := requireSystemError(t, err, payment.MsgCurrencyNotAllowed)
	require.Equal(t, "GBP", pe.Details)
	require.Nil(t, tx.Receipt())
}

func TestTransaction_CardWithoutToken(t *testing.T) {
	client, _ := newClient(t)

	card, err := client.NewCard(testCard)
	require.NoError(t, err)

	tx, err := client.NewTransaction(payment.TransactionRequest{
		Type: payment.TypePurchase,
		Data: &payment.TransactionData{Amount: amount("10"), Currency: "USD"},
	})
	require.NoError(t, err)

	requireSystemError(t, tx.Process(context.Background(), card), payment.MsgNoToken)
	requireSystemError(t, tx.Process(context.Background(), nil), payment.MsgNoToken)
	require.Nil(t, tx.Receipt())
}

func TestTransaction_TransportError(t *testing.T) {
	client, transport := newClient(t)
	card := createdCard(t, client)
	boom := &gateway.Error{StatusCode: 502, Message: "bad gateway"}

	tx, err := client.NewTransaction(payment.TransactionRequest{
		Type:          payment.TypeVoid,
		TransactionID: "111111111111111111111111",
		Data:          &payment.TransactionData{},
	})
	require.NoError(t, err)

	transport.EXPECT().
		SubmitTransaction(gomock.Any(), gateway.TransactionRequest{
			Path: "transactions/111111111111111111111111/void",
			Payload: gateway.TransactionPayload{
				PaymentMethodToken: card.Token(),
			},
		}).
		Return(nil, boom)

	err = tx.Process(context.Background(), card)
	require.True(t, errors.Is(err, boom))
	require.Equal(t, 502, gateway.StatusCode(err))
	require.Nil(t, tx.Receipt())
}
