package sandbox_test

import (
	"context"
	"database/sql"
	"encoding/hex"
	"os"
	"testing"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/internal/pan"
	"github.com/alovak/cardvault/messages"
	"github.com/alovak/cardvault/sandbox"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestPGRepository runs the service against Postgres and checks what ends
// up in the tables. Skips unless DB_DSN is provided and REPO_BACKEND=pg.
func TestPGRepository(t *testing.T) {
	if os.Getenv("REPO_BACKEND") != "pg" {
		t.Skip("REPO_BACKEND != pg; skipping DB integration test")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set; skipping DB integration test")
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.PingContext(ctx))

	repo := sandbox.NewPGRepository(db)
	require.NoError(t, repo.Migrate(ctx))

	cfg := sandbox.DefaultConfig()
	svc := sandbox.NewService(repo, cfg, nil)

	created, err := svc.CreatePaymentMethod(ctx, gateway.CardPayload{
		Number:   gateway.StringPtr("4111 1111 1111 1111"),
		CSC:      gateway.StringPtr("12"),
		Year:     gateway.IntPtr(2030),
		Month:    gateway.IntPtr(4),
		Address1: gateway.StringPtr("221 Foo st"),
		Custom:   gateway.MapPtr(map[string]any{"order": "42"}),
	})
	require.NoError(t, err)

	var (
		bin, last4 string
		panHash    []byte
	)
	row := db.QueryRowContext(ctx, `select bin, last4, pan_hash from sandbox.payment_methods where token=$1`, created.Token)
	require.NoError(t, row.Scan(&bin, &last4, &panHash))
	require.Equal(t, "411111", bin)
	require.Equal(t, "1111", last4)
	require.Equal(t,
		hex.EncodeToString(pan.HashHMAC("4111111111111111", []byte(cfg.HashKey))),
		hex.EncodeToString(panHash))

	loaded, err := svc.GetPaymentMethod(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, "42", loaded.Custom["order"])
	require.Equal(t, []messages.Raw{
		{Class: messages.ClassError, Context: "input.cvv", Key: "too_short"},
	}, loaded.Messages)

	_, err = svc.UpdatePaymentMethod(ctx, created.Token, gateway.CardPayload{CSC: gateway.StringPtr("123")})
	require.NoError(t, err)

	amount := decimal.RequireFromString("12.34")
	auth, err := svc.Process(ctx, "authorize", gateway.TransactionPayload{
		PaymentMethodToken: created.Token,
		Amount:             &amount,
		Currency:           "usd",
	})
	require.NoError(t, err)
	require.True(t, auth.Receipt.Success)
	require.Equal(t, "A", auth.Receipt.AVSResultCode)

	// concurrent captures of one authorization: only one goes through
	type result struct {
		resp *gateway.TransactionResponse
		err  error
	}
	results := make(chan result, 5)
	for i := 0; i < 5; i++ {
		go func() {
			resp, err := svc.Reference(ctx, auth.Receipt.TransactionID, "capture", gateway.TransactionPayload{})
			results <- result{resp, err}
		}()
	}
	var captured int
	for i := 0; i < 5; i++ {
		r := <-results
		require.NoError(t, r.err)
		if r.resp.Receipt.Success {
			captured++
		}
	}
	require.Equal(t, 1, captured)

	var (
		status   string
		currency string
		stored   decimal.Decimal
	)
	row = db.QueryRowContext(ctx, `select status, currency, amount from sandbox.transactions where tx_id=$1`, auth.Receipt.TransactionID)
	require.NoError(t, row.Scan(&status, &currency, &stored))
	require.Equal(t, "captured", status)
	require.Equal(t, "USD", currency)
	require.True(t, stored.Equal(amount))

	redacted, err := svc.RedactPaymentMethod(ctx, created.Token)
	require.NoError(t, err)
	require.True(t, redacted.Method.Redacted)

	row = db.QueryRowContext(ctx, `select pan_hash from sandbox.payment_methods where token=$1`, created.Token)
	require.NoError(t, row.Scan(&panHash))
	require.Empty(t, panHash)
}
