package sandbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/cardvault/messages"
	"github.com/alovak/cardvault/sandbox/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound = fmt.Errorf("not found")
	ErrConflict = fmt.Errorf("conflict")
)

// Schema creates the tables used by the pg backend.
const Schema = `
CREATE SCHEMA IF NOT EXISTS sandbox;

CREATE TABLE IF NOT EXISTS sandbox.payment_methods (
    token        text PRIMARY KEY,
    bin          text NOT NULL DEFAULT '',
    last4        text NOT NULL DEFAULT '',
    pan_hash     bytea,
    card_type    text NOT NULL DEFAULT '',
    expiry_year  int NOT NULL DEFAULT 0,
    expiry_month int NOT NULL DEFAULT 0,
    first_name   text NOT NULL DEFAULT '',
    last_name    text NOT NULL DEFAULT '',
    address_1    text NOT NULL DEFAULT '',
    address_2    text NOT NULL DEFAULT '',
    city         text NOT NULL DEFAULT '',
    state        text NOT NULL DEFAULT '',
    zip          text NOT NULL DEFAULT '',
    custom       jsonb,
    messages     jsonb,
    is_retained  boolean NOT NULL DEFAULT false,
    is_redacted  boolean NOT NULL DEFAULT false,
    created_at   timestamptz NOT NULL,
    updated_at   timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS sandbox.transactions (
    tx_id                text PRIMARY KEY,
    reference_id         text NOT NULL DEFAULT '',
    type                 text NOT NULL,
    payment_method_token text NOT NULL,
    amount               numeric(19,4) NOT NULL,
    currency             text NOT NULL,
    success              boolean NOT NULL,
    status               text NOT NULL,
    billing_reference    text NOT NULL DEFAULT '',
    customer_reference   text NOT NULL DEFAULT '',
    descriptor           text NOT NULL DEFAULT '',
    avs_result_code      text NOT NULL DEFAULT '',
    custom               jsonb,
    created_at           timestamptz NOT NULL
);
`

// Repository keeps payment methods and transactions in memory, or in
// Postgres when built with NewPGRepository.
type Repository struct {
	mu             sync.RWMutex
	paymentMethods map[string]models.PaymentMethod
	transactions   map[string]models.Transaction

	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		paymentMethods: make(map[string]models.PaymentMethod),
		transactions:   make(map[string]models.Transaction),
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate applies Schema. It is a no-op for the memory backend.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *Repository) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.paymentMethods[pm.Token]; ok {
			return fmt.Errorf("payment method %s exists: %w", pm.Token, ErrConflict)
		}
		r.paymentMethods[pm.Token] = clonePaymentMethod(pm)
		return nil
	}

	custom, msgs, err := encodeJSON(pm.Custom, pm.Messages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO sandbox.payment_methods(token, bin, last4, pan_hash, card_type, expiry_year, expiry_month,
            first_name, last_name, address_1, address_2, city, state, zip, custom, messages,
            is_retained, is_redacted, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    `, pm.Token, pm.BIN, pm.LastFour, pm.PANHash, pm.Issuer, pm.Year, pm.Month,
		pm.FirstName, pm.LastName, pm.Address1, pm.Address2, pm.City, pm.State, pm.Zip, custom, msgs,
		pm.Retained, pm.Redacted, pm.CreatedAt, pm.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *Repository) GetPaymentMethod(ctx context.Context, token string) (*models.PaymentMethod, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		pm, ok := r.paymentMethods[token]
		if !ok {
			return nil, ErrNotFound
		}
		out := clonePaymentMethod(&pm)
		return &out, nil
	}

	row := r.db.QueryRowContext(ctx, `
        SELECT token, bin, last4, pan_hash, card_type, expiry_year, expiry_month,
               first_name, last_name, address_1, address_2, city, state, zip, custom, messages,
               is_retained, is_redacted, created_at, updated_at
          FROM sandbox.payment_methods WHERE token=$1
    `, token)
	var (
		pm           models.PaymentMethod
		custom, msgs []byte
	)
	err := row.Scan(&pm.Token, &pm.BIN, &pm.LastFour, &pm.PANHash, &pm.Issuer, &pm.Year, &pm.Month,
		&pm.FirstName, &pm.LastName, &pm.Address1, &pm.Address2, &pm.City, &pm.State, &pm.Zip, &custom, &msgs,
		&pm.Retained, &pm.Redacted, &pm.CreatedAt, &pm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := decodeJSON(custom, &pm.Custom); err != nil {
		return nil, err
	}
	if err := decodeJSON(msgs, &pm.Messages); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *Repository) UpdatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.paymentMethods[pm.Token]; !ok {
			return ErrNotFound
		}
		r.paymentMethods[pm.Token] = clonePaymentMethod(pm)
		return nil
	}

	custom, msgs, err := encodeJSON(pm.Custom, pm.Messages)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
        UPDATE sandbox.payment_methods
           SET bin=$2, last4=$3, pan_hash=$4, card_type=$5, expiry_year=$6, expiry_month=$7,
               first_name=$8, last_name=$9, address_1=$10, address_2=$11, city=$12, state=$13, zip=$14,
               custom=$15, messages=$16, is_retained=$17, is_redacted=$18, updated_at=$19
         WHERE token=$1
    `, pm.Token, pm.BIN, pm.LastFour, pm.PANHash, pm.Issuer, pm.Year, pm.Month,
		pm.FirstName, pm.LastName, pm.Address1, pm.Address2, pm.City, pm.State, pm.Zip,
		custom, msgs, pm.Retained, pm.Redacted, pm.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.transactions[tx.ID]; ok {
			return fmt.Errorf("transaction %s exists: %w", tx.ID, ErrConflict)
		}
		r.transactions[tx.ID] = cloneTransaction(tx)
		return nil
	}

	custom, _, err := encodeJSON(tx.Custom, nil)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO sandbox.transactions(tx_id, reference_id, type, payment_method_token, amount, currency,
            success, status, billing_reference, customer_reference, descriptor, avs_result_code, custom, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    `, tx.ID, tx.ReferenceID, tx.Type, tx.PaymentMethodToken, tx.Amount, tx.Currency,
		tx.Success, string(tx.Status), tx.BillingReference, tx.CustomerReference, tx.Descriptor,
		tx.AVSResultCode, custom, tx.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		tx, ok := r.transactions[id]
		if !ok {
			return nil, ErrNotFound
		}
		out := cloneTransaction(&tx)
		return &out, nil
	}

	row := r.db.QueryRowContext(ctx, `
        SELECT tx_id, reference_id, type, payment_method_token, amount, currency, success, status,
               billing_reference, customer_reference, descriptor, avs_result_code, custom, created_at
          FROM sandbox.transactions WHERE tx_id=$1
    `, id)
	var (
		tx     models.Transaction
		status string
		custom []byte
	)
	err := row.Scan(&tx.ID, &tx.ReferenceID, &tx.Type, &tx.PaymentMethodToken, &tx.Amount, &tx.Currency,
		&tx.Success, &status, &tx.BillingReference, &tx.CustomerReference, &tx.Descriptor,
		&tx.AVSResultCode, &custom, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	tx.Status = models.TransactionStatus(status)
	if err := decodeJSON(custom, &tx.Custom); err != nil {
		return nil, err
	}
	return &tx, nil
}

// SetTransactionStatus moves a transaction from status from to status to.
// It returns ErrConflict when the transaction is no longer in from.
func (r *Repository) SetTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		tx, ok := r.transactions[id]
		if !ok {
			return ErrNotFound
		}
		if tx.Status != from {
			return fmt.Errorf("transaction %s is %s: %w", id, tx.Status, ErrConflict)
		}
		tx.Status = to
		r.transactions[id] = tx
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE sandbox.transactions SET status=$3 WHERE tx_id=$1 AND status=$2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s is not %s: %w", id, from, ErrConflict)
	}
	return nil
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}

// encodeJSON returns jsonb parameters. They are passed as text: lib/pq
// sends []byte in bytea format.
func encodeJSON(custom map[string]any, msgs []messages.Raw) (c, m sql.NullString, err error) {
	if custom != nil {
		b, err := json.Marshal(custom)
		if err != nil {
			return c, m, fmt.Errorf("encoding custom: %w", err)
		}
		c = sql.NullString{String: string(b), Valid: true}
	}
	if msgs != nil {
		b, err := json.Marshal(msgs)
		if err != nil {
			return c, m, fmt.Errorf("encoding messages: %w", err)
		}
		m = sql.NullString{String: string(b), Valid: true}
	}
	return c, m, nil
}

func decodeJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

func clonePaymentMethod(pm *models.PaymentMethod) models.PaymentMethod {
	out := *pm
	out.PANHash = append([]byte(nil), pm.PANHash...)
	out.Custom = cloneMap(pm.Custom)
	out.Messages = append([]messages.Raw(nil), pm.Messages...)
	return out
}

func cloneTransaction(tx *models.Transaction) models.Transaction {
	out := *tx
	out.Custom = cloneMap(tx.Custom)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
