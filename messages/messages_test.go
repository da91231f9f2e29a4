package messages

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tr := Translate(Raw{Class: ClassError, Context: "input.card_number", Key: "failed_checksum"}, "")
	require.Equal(t, Translation{Field: "number", Message: "Card number is invalid"}, tr)

	tr = Translate(Raw{Class: ClassInfo, Context: "processor.transaction", Key: "success"}, "en_US")
	require.Equal(t, Translation{Field: "transaction", Message: "Success"}, tr)

	tr = Translate(Raw{Class: ClassError, Context: "system.general", Key: "default"}, "en_US")
	require.Equal(t, Translation{Field: "system", Message: "There was a system error"}, tr)
}

func TestTranslate_AVSCarriesCode(t *testing.T) {
	tr := Translate(Raw{Class: ClassInfo, Context: "processor.avs_result_code", Key: "A"}, "")
	require.Equal(t, Translation{Field: "avs", Message: "A: Zip/postal code is invalid"}, tr)

	tr = Translate(Raw{Class: ClassInfo, Context: "processor.avs_result_code", Key: "Y"}, "")
	require.Equal(t, Translation{Field: "avs", Message: "Y: Address is valid"}, tr)
}

func TestTranslate_Unknown(t *testing.T) {
	tr := Translate(Raw{Class: ClassError, Context: "nonexistent", Key: "x"}, "")
	require.Equal(t, Translation{Field: UnknownField, Message: "error:nonexistent:x"}, tr)

	// known context, unknown key
	tr = Translate(Raw{Class: ClassInfo, Context: "processor.avs_result_code", Key: "9"}, "")
	require.Equal(t, Translation{Field: UnknownField, Message: "info:processor.avs_result_code:9"}, tr)

	// unknown class
	tr = Translate(Raw{Class: "warning", Context: "input.cvv", Key: "too_short"}, "")
	require.Equal(t, Translation{Field: UnknownField, Message: "warning:input.cvv:too_short"}, tr)
}

func TestTranslate_UnknownLanguageFallsBack(t *testing.T) {
	require.False(t, HasLanguage("xx_XX"))
	tr := Translate(Raw{Class: ClassError, Context: "input.cvv", Key: "too_long"}, "xx_XX")
	require.Equal(t, Translation{Field: "csc", Message: "Card security code is invalid"}, tr)
}

func TestLookup(t *testing.T) {
	m, ok := Lookup(Raw{Class: ClassError, Context: "input.address", Key: "invalid"})
	require.True(t, ok)
	require.Equal(t, "address", m.Field)
	require.Equal(t, InvalidAddress, m.Template)

	_, ok = Lookup(Raw{Class: ClassError, Context: "input.address", Key: "missing"})
	require.False(t, ok)
}

func TestTranslateAll(t *testing.T) {
	raw := []Raw{
		{Class: ClassError, Context: "input.card_number", Key: "too_short"},
		{Class: ClassError, Context: "input.card_number", Key: "failed_checksum"},
		{Class: ClassError, Context: "input.cvv", Key: "too_long"},
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "A"},
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "A"},
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "Y"},
		{Class: ClassInfo, Context: "processor.transaction", Key: "success"},
		{Class: ClassError, Context: "nonexistent", Key: "x"},
		{Class: "debug", Context: "input.cvv", Key: "too_long"},
	}

	groups := TranslateAll(raw, "")

	require.Equal(t, map[string][]string{
		"number":     {"Card number is invalid"},
		"csc":        {"Card security code is invalid"},
		UnknownField: {"error:nonexistent:x"},
	}, groups.Errors)
	require.Equal(t, map[string][]string{
		"avs":         {"A: Zip/postal code is invalid", "Y: Address is valid"},
		"transaction": {"Success"},
	}, groups.Info)
	require.True(t, groups.HasErrors())
}

func TestTranslateAll_SharedTemplateDedup(t *testing.T) {
	// B and A share a template but differ by code prefix, so both are kept;
	// repeating either code is dropped. Order is first seen.
	raw := []Raw{
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "B"},
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "A"},
		{Class: ClassInfo, Context: "processor.avs_result_code", Key: "B"},
	}
	groups := TranslateAll(raw, "")
	require.Equal(t, []string{"B: Zip/postal code is invalid", "A: Zip/postal code is invalid"}, groups.Info["avs"])
}

func TestTranslateAll_NoDedupAcrossClasses(t *testing.T) {
	raw := []Raw{
		{Class: ClassError, Context: "processor.transaction", Key: "declined"},
		{Class: ClassInfo, Context: "processor.transaction", Key: "success"},
	}
	groups := TranslateAll(raw, "")
	require.Equal(t, []string{"Declined"}, groups.Errors["transaction"])
	require.Equal(t, []string{"Success"}, groups.Info["transaction"])
}

func TestTranslateAll_Empty(t *testing.T) {
	groups := TranslateAll(nil, "")
	require.Empty(t, groups.Errors)
	require.Empty(t, groups.Info)
	require.False(t, groups.HasErrors())

	groups = TranslateAll([]Raw{{Class: ClassInfo, Context: "processor.transaction", Key: "success"}}, "")
	_, ok := groups.Errors["transaction"]
	require.False(t, ok, "no placeholder lists for absent fields")
}
