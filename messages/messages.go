// Package messages translates gateway status codes into per-field,
// human-readable strings.
//
// The gateway reports outcomes as raw (class, context, key) triples. Each
// known triple maps to a field (a card or transaction field, or a virtual
// field such as "system", "transaction" or "avs") and a localized message.
// Unknown triples never fail: they translate to the "unknown" field with the
// raw triple as the message.
package messages

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Class is the severity of a raw message.
type Class string

const (
	ClassError Class = "error"
	ClassInfo  Class = "info"
)

// UnknownField receives translations of unmapped raw messages.
const UnknownField = "unknown"

// Raw is a message as emitted by the gateway.
type Raw struct {
	Class   Class  `json:"cls"`
	Context string `json:"context"`
	Key     string `json:"key"`
}

func (r Raw) String() string {
	return fmt.Sprintf("%s:%s:%s", r.Class, r.Context, r.Key)
}

// Translation is a raw message resolved to a field and a readable string.
type Translation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Mapping is one entry of the translation table.
type Mapping struct {
	Field    string
	Template string
	// Prefix is shown before the message, e.g. the AVS result code.
	Prefix string
}

// Message renders the mapping in lang.
func (m Mapping) Message(lang string) string {
	s := Str(lang, m.Template)
	if m.Prefix != "" {
		return m.Prefix + ": " + s
	}
	return s
}

func avs(code, template string) Mapping {
	return Mapping{Field: "avs", Template: template, Prefix: code}
}

// mappings is keyed by class, then context, then key.
var mappings = map[Class]map[string]map[string]Mapping{
	ClassError: {
		"system.general": {
			"default": {Field: "system", Template: SystemError},
		},
		"input.card_number": {
			"too_short":       {Field: "number", Template: InvalidNumber},
			"too_long":        {Field: "number", Template: InvalidNumber},
			"failed_checksum": {Field: "number", Template: InvalidNumber},
		},
		"input.cvv": {
			"too_short": {Field: "csc", Template: InvalidCSC},
			"too_long":  {Field: "csc", Template: InvalidCSC},
		},
		"input.address": {
			"invalid": {Field: "address", Template: InvalidAddress},
		},
		"processor.transaction": {
			"declined": {Field: "transaction", Template: Declined},
		},
	},
	ClassInfo: {
		"processor.transaction": {
			"success":                 {Field: "transaction", Template: Success},
			"credit_criteria_invalid": {Field: "transaction", Template: NotSettled},
		},
		"processor.avs_result_code": {
			"A": avs("A", BadZip),
			"B": avs("B", BadZip),
			"C": avs("C", BadAddrZip),
			"D": avs("D", Good),
			"E": avs("E", NoAVS),
			"F": avs("F", BadMember),
			"G": avs("G", NoAVS),
			"H": avs("H", BadMember),
			"I": avs("I", BadZip),
			"J": avs("J", Good),
			"K": avs("K", BadAddrZip),
			"L": avs("L", BadAddr),
			"M": avs("M", Good),
			"N": avs("N", BadAddrZip),
			"O": avs("O", BadZip),
			"P": avs("P", BadAddr),
			"Q": avs("Q", Good),
			"R": avs("R", NoSys),
			"S": avs("S", NoAVS),
			"T": avs("T", BadMember),
			"U": avs("U", NoAVS),
			"V": avs("V", Good),
			"W": avs("W", BadAddr),
			"X": avs("X", Good),
			"Y": avs("Y", Good),
			"Z": avs("Z", BadAddr),
		},
	},
}

// Lookup finds the mapping for a raw message.
func Lookup(msg Raw) (Mapping, bool) {
	m, ok := mappings[msg.Class][msg.Context][msg.Key]
	return m, ok
}

// Translate resolves msg in lang. An empty lang means DefaultLanguage.
// Unmapped messages go to UnknownField with the raw triple as text.
func Translate(msg Raw, lang string) Translation {
	if lang == "" {
		lang = DefaultLanguage
	}
	m, ok := Lookup(msg)
	if !ok {
		return Translation{Field: UnknownField, Message: msg.String()}
	}
	return Translation{Field: m.Field, Message: m.Message(lang)}
}

// Groups holds translated messages per field, split by severity.
type Groups struct {
	Errors map[string][]string `json:"errors"`
	Info   map[string][]string `json:"info"`
}

// HasErrors reports whether any error message is present.
func (g Groups) HasErrors() bool {
	return len(g.Errors) > 0
}

// TranslateAll translates msgs and groups the strings by field, one map per
// class. Per field the first-seen order is kept and repeated strings are
// dropped. Messages of any other class are ignored.
func TranslateAll(msgs []Raw, lang string) Groups {
	var errs, info []Raw
	for _, m := range msgs {
		switch m.Class {
		case ClassError:
			errs = append(errs, m)
		case ClassInfo:
			info = append(info, m)
		}
	}
	return Groups{
		Errors: build(errs, lang),
		Info:   build(info, lang),
	}
}

func build(msgs []Raw, lang string) map[string][]string {
	out := make(map[string][]string)
	for _, m := range msgs {
		tr := Translate(m, lang)
		existing, ok := out[tr.Field]
		if !ok {
			out[tr.Field] = []string{tr.Message}
			continue
		}
		if !slices.Contains(existing, tr.Message) {
			out[tr.Field] = append(existing, tr.Message)
		}
	}
	return out
}
