package messages

// DefaultLanguage is used when no language is requested or the requested
// language has no string table.
const DefaultLanguage = "en_US"

// Template identifiers shared by the mapping table and the string tables.
const (
	SystemError    = "SYSTEM_ERROR"
	InvalidNumber  = "INVALID_NUMBER"
	InvalidCSC     = "INVALID_CSC"
	InvalidAddress = "INVALID_ADDRESS"

	// AVS results. Codes with the same meaning share one message.
	BadZip     = "BADZIP"    // A, B, I, O
	BadAddrZip = "BADADRZIP" // C, K, N
	Good       = "GOOD"      // D, J, M, Q, V, X, Y
	BadMember  = "BADMEMBER" // F, H, T
	NoAVS      = "NOAVS"     // E, G, S, U
	BadAddr    = "BADADR"    // L, P, W, Z
	NoSys      = "NOSYS"     // R

	Success    = "SUCCESS"
	Declined   = "DECLINED"
	NotSettled = "NOTSETTLED"
)

var stringTables = map[string]map[string]string{
	"en_US": {
		SystemError:    "There was a system error",
		InvalidNumber:  "Card number is invalid",
		InvalidCSC:     "Card security code is invalid",
		InvalidAddress: "Cardholder address is invalid",

		BadZip:     "Zip/postal code is invalid",
		BadAddrZip: "Address and zip/postal code are invalid",
		Good:       "Address is valid",
		BadMember:  "Card member's name is invalid",
		NoAVS:      "AVS is not supported or bad AVS data",
		BadAddr:    "Address is invalid",
		NoSys:      "System unavailable",

		Success:    "Success",
		Declined:   "Declined",
		NotSettled: "Could not credit unsettled transaction.",
	},
}

// Str returns the string for a template id in lang, falling back to the
// default language when lang has no table.
func Str(lang, id string) string {
	table, ok := stringTables[lang]
	if !ok {
		table = stringTables[DefaultLanguage]
	}
	return table[id]
}

// HasLanguage reports whether a string table exists for lang.
func HasLanguage(lang string) bool {
	_, ok := stringTables[lang]
	return ok
}
