package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/internal/expiry"
	"github.com/alovak/cardvault/internal/pan"
	"github.com/alovak/cardvault/payment"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
)

var (
	flagNumber   = flag.String("number", "", "card number (generated from -bin when empty)")
	flagBIN      = flag.String("bin", "411111", "BIN prefix for a generated number")
	flagLength   = flag.Int("length", 16, "length of a generated number")
	flagCSC      = flag.String("csc", "", "card security code")
	flagExp      = flag.String("exp", "12/30", "expiry as MM/YY or MMYY")
	flagName     = flag.String("name", "", "cardholder name")
	flagAddress  = flag.String("address", "", "billing street address")
	flagZip      = flag.String("zip", "", "billing zip code")
	flagAmount   = flag.String("amount", "", "run a transaction for this amount after tokenizing")
	flagCurrency = flag.String("currency", "", "transaction currency (PAYMENT_CURRENCY when empty)")
	flagType     = flag.String("type", "purchase", "transaction type: purchase|authorize")
	flagShowOnly = flag.Bool("print", false, "print the card summary only, do not contact the gateway")
	flagVerbose  = flag.Bool("verbose", false, "print full PAN (otherwise masked) and debug logs")
)

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	payCfg := must1(payment.FromEnv())
	now := time.Now()

	number := *flagNumber
	if number == "" {
		number = must1(pan.Generate(*flagBIN, *flagLength))
	}
	if *flagCSC == "" {
		fail("-csc is required")
	}
	year, month, err := expiry.ParseCardFace(*flagExp, now)
	if err != nil {
		fail("-exp: %v", err)
	}

	cardName := normalizeCardName(*flagName)
	first, last := splitName(cardName)

	gwCfg := gateway.FromEnv()
	client := payment.New(gateway.NewClient(gwCfg, nil, logger), payCfg, logger)

	card := must1(client.NewCard(payment.CardData{
		Number:    number,
		CSC:       *flagCSC,
		Year:      strconv.Itoa(year),
		Month:     strconv.Itoa(month),
		FirstName: first,
		LastName:  last,
		Address1:  *flagAddress,
		Zip:       *flagZip,
	}))

	printPAN := pan.Mask(card.Number())
	if *flagVerbose {
		printPAN = card.Number() + "   (WARNING: printing full PAN)"
	}
	fmt.Printf("PAN: %s\nISSUER: %s\nEXP(card-face): %s\n", printPAN, card.Issuer(), expiry.CardFace(year, month))
	if cardName != "" {
		fmt.Printf("NAME(card-face): %s\n", cardName)
	}
	fmt.Printf("VALID: %t  EXPIRED: %t\n", card.IsValid(), card.IsExpired())

	if *flagShowOnly {
		return
	}
	must(gwCfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	must(card.Create(ctx))
	fmt.Printf("TOKEN: %s\n", card.Token())
	if card.Messages().HasErrors() {
		printJSON("card errors", card.Messages().Errors)
	}

	if *flagAmount == "" {
		return
	}
	amount, err := decimal.NewFromString(*flagAmount)
	if err != nil {
		fail("-amount: %v", err)
	}
	tx := must1(client.NewTransaction(payment.TransactionRequest{
		Type: payment.TransactionType(*flagType),
		Data: &payment.TransactionData{
			Amount:   &amount,
			Currency: *flagCurrency,
		},
	}))
	must(tx.Process(ctx, card))

	printJSON("receipt", tx.Receipt())
	printJSON("messages", tx.Messages())
	if !tx.Success() {
		os.Exit(2)
	}
}

func normalizeCardName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	normalized := strings.Join(strings.Fields(trimmed), " ")
	up := strings.ToUpper(normalized)
	if len(up) > 26 {
		return up[:26]
	}
	return up
}

// splitName treats the last word as the last name.
func splitName(name string) (first, last string) {
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func printJSON(label string, v any) {
	enc, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s:\n%s\n", strings.ToUpper(label), enc)
}

func must(err error) {
	if err != nil {
		fail("%v", err)
	}
}

func must1[T any](v T, err error) T {
	if err != nil {
		fail("%v", err)
	}
	return v
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
