package payment

import (
	"context"
	"reflect"
	"strings"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/internal/check"
	"github.com/alovak/cardvault/internal/expiry"
	"github.com/alovak/cardvault/internal/pan"
	"github.com/alovak/cardvault/messages"
	"golang.org/x/exp/slog"
)

// State is the lifecycle position of a Card.
type State string

const (
	// StateNew cards have no token.
	StateNew State = "new"
	// StateCreated cards have a token but no loaded gateway metadata.
	StateCreated State = "created"
	// StateSynced cards were loaded or updated from the gateway.
	StateSynced State = "synced"
)

// CardData is the input of NewCard. Empty strings are treated as not
// supplied. Year accepts 1, 2 or 4 digits, Month 1..12.
type CardData struct {
	// Token refers to an existing payment method. Number and CSC are not
	// required when it is set.
	Token string

	Number    string
	CSC       string
	Year      string
	Month     string
	FirstName string
	LastName  string
	Address1  string
	Address2  string
	City      string
	State     string
	Zip       string
	Custom    map[string]any
}

// Card is a payment card. Setters normalize their input and add the field
// to the dirty set when the stored value changes.
type Card struct {
	client *Client
	logger *slog.Logger

	number string
	issuer string
	csc    string
	year   int
	month  int

	firstName string
	lastName  string
	address1  string
	address2  string
	city      string
	state     string
	zip       string
	custom    map[string]any

	token    string
	method   *gateway.Method
	status   State
	dirty    FieldSet
	messages messages.Groups
}

// NewCard builds a card from data. Without a token both the number and
// the CSC are required.
func (c *Client) NewCard(data CardData) (*Card, error) {
	if data.Token == "" {
		if pan.Normalize(data.Number) == "" {
			return nil, ErrNumberRequired
		}
		if data.CSC == "" {
			return nil, ErrCSCRequired
		}
	}

	card := &Card{
		client: c,
		logger: c.logger,
		issuer: check.Unknown,
		status: StateNew,
		dirty:  FieldSet{},
	}
	if data.Token != "" {
		card.token = data.Token
		card.status = StateCreated
	}

	card.SetNumber(data.Number)
	card.SetCSC(data.CSC)
	card.SetYear(data.Year)
	card.SetMonth(data.Month)
	card.SetFirstName(data.FirstName)
	card.SetLastName(data.LastName)
	card.SetAddress1(data.Address1)
	card.SetAddress2(data.Address2)
	card.SetCity(data.City)
	card.SetState(data.State)
	card.SetZip(data.Zip)
	if data.Custom != nil {
		card.SetCustom(data.Custom)
	}
	return card, nil
}

// SetNumber stores the digits of s and recomputes the issuer.
func (c *Card) SetNumber(s string) {
	n := pan.Normalize(s)
	if n == c.number {
		return
	}
	c.number = n
	c.issuer = check.IssuerName(n)
	c.dirty.Add(FieldNumber)
}

func (c *Card) SetCSC(s string) {
	c.setString(&c.csc, strings.TrimSpace(s), FieldCSC)
}

// SetYear accepts a 1, 2 or 4 digit year. Other input is ignored.
func (c *Card) SetYear(s string) {
	y, ok := expiry.NormalizeYear(s, c.client.cfg.now())
	if !ok || y == c.year {
		return
	}
	c.year = y
	c.dirty.Add(FieldYear)
}

// SetMonth accepts a month in 1..12. Other input is ignored.
func (c *Card) SetMonth(s string) {
	m, ok := expiry.ParseMonth(s)
	if !ok || m == c.month {
		return
	}
	c.month = m
	c.dirty.Add(FieldMonth)
}

func (c *Card) SetFirstName(s string) { c.setString(&c.firstName, s, FieldFirstName) }
func (c *Card) SetLastName(s string)  { c.setString(&c.lastName, s, FieldLastName) }
func (c *Card) SetAddress1(s string)  { c.setString(&c.address1, s, FieldAddress1) }
func (c *Card) SetAddress2(s string)  { c.setString(&c.address2, s, FieldAddress2) }
func (c *Card) SetCity(s string)      { c.setString(&c.city, s, FieldCity) }
func (c *Card) SetState(s string)     { c.setString(&c.state, s, FieldState) }
func (c *Card) SetZip(s string)       { c.setString(&c.zip, s, FieldZip) }

// SetCustom replaces the custom payload sent with the payment method.
func (c *Card) SetCustom(m map[string]any) {
	if reflect.DeepEqual(m, c.custom) {
		return
	}
	c.custom = copyMap(m)
	c.dirty.Add(FieldCustom)
}

func (c *Card) setString(dst *string, v string, f Field) {
	if *dst == v {
		return
	}
	*dst = v
	c.dirty.Add(f)
}

func (c *Card) Number() string    { return c.number }
func (c *Card) Issuer() string    { return c.issuer }
func (c *Card) CSC() string       { return c.csc }
func (c *Card) FirstName() string { return c.firstName }
func (c *Card) LastName() string  { return c.lastName }
func (c *Card) Address1() string  { return c.address1 }
func (c *Card) Address2() string  { return c.address2 }
func (c *Card) City() string      { return c.city }
func (c *Card) State() string     { return c.state }
func (c *Card) Zip() string       { return c.zip }

// Year returns the four digit expiry year, if set.
func (c *Card) Year() (int, bool) { return c.year, c.year != 0 }

// Month returns the expiry month, if set.
func (c *Card) Month() (int, bool) { return c.month, c.month != 0 }

// Token is empty until the card is created at the gateway.
func (c *Card) Token() string { return c.token }

// Method is nil until the gateway has returned payment method metadata.
func (c *Card) Method() *gateway.Method { return c.method }

func (c *Card) Custom() map[string]any { return copyMap(c.custom) }

func (c *Card) Status() State { return c.status }

// Dirty lists the fields changed since the last create, load or update.
func (c *Card) Dirty() []Field { return c.dirty.List() }

func (c *Card) IsDirty(f Field) bool { return c.dirty.Has(f) }

// Messages are the translated messages of the last gateway response.
func (c *Card) Messages() messages.Groups { return c.messages }

// IsValid reports whether the number passes the checksum and matches its
// issuer pattern and whether the CSC fits the issuer.
func (c *Card) IsValid() bool {
	if c.number == "" {
		return false
	}
	is := check.Detect(c.number)
	return check.Luhn(c.number) && is.Number.MatchString(c.number) && is.CSC.MatchString(c.csc)
}

// IsExpired reports whether the end of the expiry month has passed. A
// card without year or month is expired.
func (c *Card) IsExpired() bool {
	if c.year == 0 || c.month == 0 {
		return true
	}
	cfg := c.client.cfg
	expired, err := expiry.IsExpired(c.year, c.month, cfg.now(), cfg.location())
	return err != nil || expired
}

// Create registers the card with the gateway and stores the returned token.
func (c *Card) Create(ctx context.Context) error {
	if c.token != "" {
		return systemError(MsgHasToken, "")
	}
	if c.number == "" {
		return ErrNumberRequired
	}
	if c.csc == "" {
		return ErrCSCRequired
	}

	resp, err := c.client.transport.SubmitCard(ctx, gateway.ActionCreate, gateway.CardRequest{
		Payload: c.payload(nil),
	})
	if err != nil {
		return err
	}

	c.token = resp.Token
	c.method = resp.Method
	c.setMessages(resp.Messages)
	c.dirty.clear()
	if c.token != "" {
		c.status = StateCreated
	}

	c.logger.Debug("payment method created",
		slog.String("token", c.token),
		slog.String("card", pan.Mask(c.number)),
		slog.Bool("errors", c.messages.HasErrors()),
	)
	return nil
}

// Load fetches the payment method metadata, the holder fields and the
// custom payload. The number and CSC are never returned by the gateway.
func (c *Card) Load(ctx context.Context) error {
	resp, err := c.submit(ctx, gateway.ActionLoad, gateway.CardPayload{})
	if err != nil {
		return err
	}

	c.apply(resp.Fields)
	if resp.Custom != nil {
		c.custom = copyMap(resp.Custom)
	}
	c.method = resp.Method
	c.setMessages(resp.Messages)
	c.dirty.clear()
	c.status = StateSynced
	return nil
}

// Update sends the dirty fields only.
func (c *Card) Update(ctx context.Context) error {
	if c.token == "" {
		return systemError(MsgNoToken, "")
	}
	resp, err := c.submit(ctx, gateway.ActionUpdate, c.payload(c.dirty))
	if err != nil {
		return err
	}

	c.method = resp.Method
	c.setMessages(resp.Messages)
	c.dirty.clear()
	c.status = StateSynced
	return nil
}

// Retain asks the gateway to keep the payment method. The dirty set is
// left untouched.
func (c *Card) Retain(ctx context.Context) error {
	return c.flag(ctx, gateway.ActionRetain)
}

// Redact asks the gateway to remove the sensitive card data. The dirty set
// is left untouched.
func (c *Card) Redact(ctx context.Context) error {
	return c.flag(ctx, gateway.ActionRedact)
}

func (c *Card) flag(ctx context.Context, action gateway.CardAction) error {
	resp, err := c.submit(ctx, action, gateway.CardPayload{})
	if err != nil {
		return err
	}
	c.method = resp.Method
	c.setMessages(resp.Messages)
	return nil
}

func (c *Card) submit(ctx context.Context, action gateway.CardAction, p gateway.CardPayload) (*gateway.CardResponse, error) {
	if c.token == "" {
		return nil, systemError(MsgNoToken, "")
	}
	resp, err := c.client.transport.SubmitCard(ctx, action, gateway.CardRequest{Token: c.token, Payload: p})
	if err != nil {
		c.logger.Debug("payment method action failed",
			slog.String("action", string(action)),
			slog.String("token", c.token),
			slog.Any("err", err),
		)
		return nil, err
	}
	return resp, nil
}

func (c *Card) setMessages(raw []messages.Raw) {
	c.messages = messages.TranslateAll(raw, c.client.language())
}

// apply copies the echoed fields without marking them dirty.
func (c *Card) apply(f gateway.CardFields) {
	c.firstName = f.FirstName
	c.lastName = f.LastName
	c.address1 = f.Address1
	c.address2 = f.Address2
	c.city = f.City
	c.state = f.State
	c.zip = f.Zip
	if f.Year != 0 {
		c.year = f.Year
	}
	if f.Month >= 1 && f.Month <= 12 {
		c.month = f.Month
	}
	if c.number == "" && f.Issuer != "" {
		c.issuer = f.Issuer
	}
}

// payload builds the request body. A nil only set sends every field that
// has a value.
func (c *Card) payload(only FieldSet) gateway.CardPayload {
	var p gateway.CardPayload
	want := func(f Field, set bool) bool {
		if only == nil {
			return set
		}
		return only.Has(f)
	}
	str := func(dst **string, v string, f Field) {
		if want(f, v != "") {
			*dst = gateway.StringPtr(v)
		}
	}

	str(&p.Number, c.number, FieldNumber)
	str(&p.CSC, c.csc, FieldCSC)
	if want(FieldYear, c.year != 0) {
		p.Year = gateway.IntPtr(c.year)
	}
	if want(FieldMonth, c.month != 0) {
		p.Month = gateway.IntPtr(c.month)
	}
	str(&p.FirstName, c.firstName, FieldFirstName)
	str(&p.LastName, c.lastName, FieldLastName)
	str(&p.Address1, c.address1, FieldAddress1)
	str(&p.Address2, c.address2, FieldAddress2)
	str(&p.City, c.city, FieldCity)
	str(&p.State, c.state, FieldState)
	str(&p.Zip, c.zip, FieldZip)
	if want(FieldCustom, c.custom != nil) {
		p.Custom = gateway.MapPtr(copyMap(c.custom))
	}
	return p
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
