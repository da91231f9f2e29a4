package payment_test

import (
	"testing"
	"time"

	"github.com/alovak/cardvault/gateway/mocks"
	"github.com/alovak/cardvault/messages"
	"github.com/alovak/cardvault/payment"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

var testCard = payment.CardData{
	Number:    "5555555555554444",
	CSC:       "111",
	Year:      "2027",
	Month:     "10",
	FirstName: "Foo",
	LastName:  "Bar",
	Address1:  "221 Foo st",
	Zip:       "99561",
}

var bogusCard = payment.CardData{
	Number: "2420318231",
	CSC:    "14111",
	Year:   "2025",
	Month:  "10",
}

func newClient(t *testing.T) (*payment.Client, *mocks.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	cfg := payment.DefaultConfig()
	cfg.Now = func() time.Time { return fixedNow }

	return payment.New(transport, cfg, nil), transport
}

func str(id string) string {
	return messages.Str(messages.DefaultLanguage, id)
}

func requireSystemError(t *testing.T, err error, msg string) *payment.Error {
	t.Helper()
	pe, ok := payment.AsError(err)
	require.True(t, ok, "want *payment.Error, got %v", err)
	require.Equal(t, payment.CategorySystem, pe.Category)
	require.Equal(t, msg, pe.Message)
	return pe
}
