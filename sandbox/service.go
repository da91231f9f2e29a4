package sandbox

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/internal/check"
	"github.com/alovak/cardvault/internal/pan"
	"github.com/alovak/cardvault/messages"
	"github.com/alovak/cardvault/sandbox/models"
	"github.com/google/uuid"
)

var ErrInvalidRequest = fmt.Errorf("invalid request")

// Raw message contexts and keys emitted by the sandbox.
const (
	contextCardNumber  = "input.card_number"
	contextCVV         = "input.cvv"
	contextTransaction = "processor.transaction"
	contextAVS         = "processor.avs_result_code"

	keyTooShort       = "too_short"
	keyTooLong        = "too_long"
	keyFailedChecksum = "failed_checksum"
	keySuccess        = "success"
	keyDeclined       = "declined"
	keyCreditCriteria = "credit_criteria_invalid"
)

const (
	minNumberLen = 12
	maxNumberLen = 19
)

type Service struct {
	repo     *Repository
	metrics  *Metrics
	hashKey  []byte
	declined map[string]struct{}
	now      func() time.Time
}

func NewService(repo *Repository, cfg *Config, metrics *Metrics) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Service{
		repo:     repo,
		metrics:  metrics,
		hashKey:  []byte(cfg.HashKey),
		declined: make(map[string]struct{}),
		now:      time.Now,
	}
	for _, n := range cfg.DeclinedNumbers {
		if n = pan.Normalize(n); n != "" {
			s.declined[hex.EncodeToString(pan.HashHMAC(n, s.hashKey))] = struct{}{}
		}
	}
	return s
}

// CreatePaymentMethod validates and stores the card. Invalid card data is
// stored too: the problems are reported as messages.
func (s *Service) CreatePaymentMethod(ctx context.Context, p gateway.CardPayload) (*gateway.CardResponse, error) {
	if p.Number == nil {
		p.Number = gateway.StringPtr("")
	}
	if p.CSC == nil {
		p.CSC = gateway.StringPtr("")
	}

	now := s.now().UTC()
	pm := &models.PaymentMethod{CreatedAt: now, UpdatedAt: now}
	s.apply(pm, p)

	// Create with uniqueness retry to avoid token collisions
	for attempt := 0; attempt < 3; attempt++ {
		pm.Token = newToken()
		err := s.repo.CreatePaymentMethod(ctx, pm)
		if err == nil {
			s.metrics.paymentMethod(string(gateway.ActionCreate), pm.Valid())
			return cardResponse(pm), nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("creating payment method: %w", err)
		}
	}
	return nil, fmt.Errorf("could not create unique payment method token after retries")
}

func (s *Service) GetPaymentMethod(ctx context.Context, token string) (*gateway.CardResponse, error) {
	pm, err := s.repo.GetPaymentMethod(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("finding payment method: %w", err)
	}
	s.metrics.paymentMethod(string(gateway.ActionLoad), pm.Valid())
	return cardResponse(pm), nil
}

// UpdatePaymentMethod applies the fields present in p.
func (s *Service) UpdatePaymentMethod(ctx context.Context, token string, p gateway.CardPayload) (*gateway.CardResponse, error) {
	return s.modify(ctx, token, gateway.ActionUpdate, func(pm *models.PaymentMethod) error {
		if pm.Redacted {
			return fmt.Errorf("payment method is redacted: %w", ErrConflict)
		}
		s.apply(pm, p)
		return nil
	})
}

func (s *Service) RetainPaymentMethod(ctx context.Context, token string) (*gateway.CardResponse, error) {
	return s.modify(ctx, token, gateway.ActionRetain, func(pm *models.PaymentMethod) error {
		pm.Retained = true
		return nil
	})
}

// RedactPaymentMethod drops the card number hash. Redacted methods cannot
// be charged or updated.
func (s *Service) RedactPaymentMethod(ctx context.Context, token string) (*gateway.CardResponse, error) {
	return s.modify(ctx, token, gateway.ActionRedact, func(pm *models.PaymentMethod) error {
		pm.Redacted = true
		pm.PANHash = nil
		return nil
	})
}

func (s *Service) modify(ctx context.Context, token string, action gateway.CardAction, fn func(*models.PaymentMethod) error) (*gateway.CardResponse, error) {
	pm, err := s.repo.GetPaymentMethod(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("finding payment method: %w", err)
	}
	if err := fn(pm); err != nil {
		return nil, err
	}
	pm.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdatePaymentMethod(ctx, pm); err != nil {
		return nil, fmt.Errorf("updating payment method: %w", err)
	}
	s.metrics.paymentMethod(string(action), pm.Valid())
	return cardResponse(pm), nil
}

// apply copies the non-nil fields of p. A new number or CSC replaces the
// matching validation messages.
func (s *Service) apply(pm *models.PaymentMethod, p gateway.CardPayload) {
	if p.Number != nil {
		number := pan.Normalize(*p.Number)
		pm.BIN = pan.BIN(number)
		pm.LastFour = pan.LastN(number, 4)
		pm.PANHash = pan.HashHMAC(number, s.hashKey)
		pm.Issuer = check.IssuerName(number)
		pm.Messages = replaceMessages(pm.Messages, contextCardNumber, validateNumber(number))
	}
	if p.CSC != nil {
		pm.Messages = replaceMessages(pm.Messages, contextCVV, validateCVV(strings.TrimSpace(*p.CSC), pm.Issuer))
	}
	if p.Year != nil {
		pm.Year = *p.Year
	}
	if p.Month != nil {
		pm.Month = *p.Month
	}
	setString(&pm.FirstName, p.FirstName)
	setString(&pm.LastName, p.LastName)
	setString(&pm.Address1, p.Address1)
	setString(&pm.Address2, p.Address2)
	setString(&pm.City, p.City)
	setString(&pm.State, p.State)
	setString(&pm.Zip, p.Zip)
	if p.Custom != nil {
		pm.Custom = nil
		if len(*p.Custom) > 0 {
			pm.Custom = cloneMap(*p.Custom)
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func validateNumber(number string) []messages.Raw {
	var key string
	switch {
	case len(number) < minNumberLen:
		key = keyTooShort
	case len(number) > maxNumberLen:
		key = keyTooLong
	case !check.Luhn(number):
		key = keyFailedChecksum
	default:
		return nil
	}
	return []messages.Raw{{Class: messages.ClassError, Context: contextCardNumber, Key: key}}
}

func validateCVV(csc, issuer string) []messages.Raw {
	minLen, maxLen := 3, 4
	if n := check.IssuerCSCLength(issuer); n > 0 {
		minLen, maxLen = n, n
	}

	var key string
	switch {
	// there is no key for malformed codes
	case len(csc) < minLen || !check.IsDigits(csc):
		key = keyTooShort
	case len(csc) > maxLen:
		key = keyTooLong
	default:
		return nil
	}
	return []messages.Raw{{Class: messages.ClassError, Context: contextCVV, Key: key}}
}

func replaceMessages(msgs []messages.Raw, msgContext string, repl []messages.Raw) []messages.Raw {
	out := make([]messages.Raw, 0, len(msgs)+len(repl))
	for _, m := range msgs {
		if m.Context != msgContext {
			out = append(out, m)
		}
	}
	return append(out, repl...)
}

// Process runs a purchase or authorize against a payment method.
// Invalid, redacted and configured test numbers are declined.
func (s *Service) Process(ctx context.Context, typ string, p gateway.TransactionPayload) (*gateway.TransactionResponse, error) {
	if typ != "purchase" && typ != "authorize" {
		return nil, fmt.Errorf("unsupported operation %q: %w", typ, ErrInvalidRequest)
	}
	if p.Amount == nil || !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", ErrInvalidRequest)
	}
	if len(p.Currency) != 3 {
		return nil, fmt.Errorf("currency code must have 3 letters: %w", ErrInvalidRequest)
	}

	pm, err := s.repo.GetPaymentMethod(ctx, p.PaymentMethodToken)
	if err != nil {
		return nil, fmt.Errorf("finding payment method: %w", err)
	}

	tx := &models.Transaction{
		ID:                 newToken(),
		ReferenceID:        newToken(),
		Type:               typ,
		PaymentMethodToken: pm.Token,
		Amount:             *p.Amount,
		Currency:           strings.ToUpper(p.Currency),
		BillingReference:   p.BillingReference,
		CustomerReference:  p.CustomerReference,
		Descriptor:         p.Descriptor,
		AVSResultCode:      avsResultCode(pm),
		Custom:             cloneMap(p.Custom),
		CreatedAt:          s.now().UTC(),
	}

	var msgs []messages.Raw
	if !pm.Valid() || pm.Redacted || s.isDeclined(pm) {
		tx.Status = models.TransactionStatusDeclined
		msgs = append(msgs, messages.Raw{Class: messages.ClassError, Context: contextTransaction, Key: keyDeclined})
	} else {
		tx.Success = true
		tx.Status = models.TransactionStatusAuthorized
		if typ == "purchase" {
			tx.Status = models.TransactionStatusCaptured
		}
		msgs = append(msgs, messages.Raw{Class: messages.ClassInfo, Context: contextTransaction, Key: keySuccess})
	}
	msgs = append(msgs, messages.Raw{Class: messages.ClassInfo, Context: contextAVS, Key: tx.AVSResultCode})

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	s.metrics.transaction(typ, tx.Success)
	return transactionResponse(tx, msgs), nil
}

// Reference runs capture, void, credit or reverse against an existing
// transaction. A missing amount means the full amount of the parent.
func (s *Service) Reference(ctx context.Context, id, op string, p gateway.TransactionPayload) (*gateway.TransactionResponse, error) {
	parent, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding transaction: %w", err)
	}

	amount := parent.Amount
	if p.Amount != nil {
		amount = *p.Amount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", ErrInvalidRequest)
	}
	withinParent := amount.LessThanOrEqual(parent.Amount)
	open := parent.Success && (parent.Status == models.TransactionStatusAuthorized || parent.Status == models.TransactionStatusCaptured)

	var (
		ok     bool
		status models.TransactionStatus
		reject = messages.Raw{Class: messages.ClassError, Context: contextTransaction, Key: keyDeclined}
	)
	switch op {
	case "capture":
		ok = parent.Success && parent.Status == models.TransactionStatusAuthorized && withinParent
		status = models.TransactionStatusCaptured
	case "void":
		ok = open
		status = models.TransactionStatusVoided
	case "credit":
		ok = parent.Settled() && withinParent
		status = models.TransactionStatusCredited
		reject = messages.Raw{Class: messages.ClassInfo, Context: contextTransaction, Key: keyCreditCriteria}
	case "reverse":
		ok = open && withinParent
		status = models.TransactionStatusReversed
	default:
		return nil, fmt.Errorf("unsupported operation %q: %w", op, ErrInvalidRequest)
	}

	// a concurrent operation that moved the parent first wins
	if ok {
		err := s.repo.SetTransactionStatus(ctx, parent.ID, parent.Status, status)
		switch {
		case errors.Is(err, ErrConflict):
			ok = false
		case err != nil:
			return nil, fmt.Errorf("updating transaction: %w", err)
		}
	}

	tx := &models.Transaction{
		ID:                 newToken(),
		ReferenceID:        parent.ID,
		Type:               op,
		PaymentMethodToken: parent.PaymentMethodToken,
		Amount:             amount,
		Currency:           parent.Currency,
		Success:            ok,
		Status:             models.TransactionStatusDeclined,
		BillingReference:   firstNonEmpty(p.BillingReference, parent.BillingReference),
		CustomerReference:  firstNonEmpty(p.CustomerReference, parent.CustomerReference),
		Descriptor:         firstNonEmpty(p.Descriptor, parent.Descriptor),
		Custom:             cloneMap(p.Custom),
		CreatedAt:          s.now().UTC(),
	}

	var msgs []messages.Raw
	if ok {
		tx.Status = status
		msgs = append(msgs, messages.Raw{Class: messages.ClassInfo, Context: contextTransaction, Key: keySuccess})
	} else {
		msgs = append(msgs, reject)
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	s.metrics.transaction(op, tx.Success)
	return transactionResponse(tx, msgs), nil
}

func (s *Service) isDeclined(pm *models.PaymentMethod) bool {
	if len(pm.PANHash) == 0 {
		return false
	}
	_, ok := s.declined[hex.EncodeToString(pm.PANHash)]
	return ok
}

// avsResultCode derives the address verification result from the billing
// data on file: Y both, Z zip only, A street only, U none.
func avsResultCode(pm *models.PaymentMethod) string {
	hasStreet := strings.TrimSpace(pm.Address1) != ""
	hasZip := strings.TrimSpace(pm.Zip) != ""
	switch {
	case hasStreet && hasZip:
		return "Y"
	case hasZip:
		return "Z"
	case hasStreet:
		return "A"
	default:
		return "U"
	}
}

// newToken returns 24 lower case hex characters.
func newToken() string {
	id := uuid.New()
	return hex.EncodeToString(id[:12])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func cardResponse(pm *models.PaymentMethod) *gateway.CardResponse {
	return &gateway.CardResponse{
		Token: pm.Token,
		Method: &gateway.Method{
			CreatedAt: pm.CreatedAt,
			UpdatedAt: pm.UpdatedAt,
			Retained:  pm.Retained,
			Redacted:  pm.Redacted,
		},
		Fields: gateway.CardFields{
			LastFour:  pm.LastFour,
			Issuer:    pm.Issuer,
			Year:      pm.Year,
			Month:     pm.Month,
			FirstName: pm.FirstName,
			LastName:  pm.LastName,
			Address1:  pm.Address1,
			Address2:  pm.Address2,
			City:      pm.City,
			State:     pm.State,
			Zip:       pm.Zip,
		},
		Custom:   cloneMap(pm.Custom),
		Messages: append([]messages.Raw{}, pm.Messages...),
	}
}

func transactionResponse(tx *models.Transaction, msgs []messages.Raw) *gateway.TransactionResponse {
	amount := tx.Amount
	return &gateway.TransactionResponse{
		Receipt: gateway.Receipt{
			TransactionID:      tx.ID,
			ReferenceID:        tx.ReferenceID,
			Type:               tx.Type,
			Success:            tx.Success,
			Amount:             &amount,
			Currency:           tx.Currency,
			PaymentMethodToken: tx.PaymentMethodToken,
			BillingReference:   tx.BillingReference,
			CustomerReference:  tx.CustomerReference,
			Descriptor:         tx.Descriptor,
			AVSResultCode:      tx.AVSResultCode,
			Custom:             cloneMap(tx.Custom),
			CreatedAt:          tx.CreatedAt,
		},
		Messages: msgs,
	}
}
