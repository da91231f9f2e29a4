package check

import "regexp"

// Issuer names returned by Detect.
const (
	AmericanExpress = "American Express"
	DinersClub      = "Diners Club"
	Discover        = "Discover"
	JCB             = "JCB"
	MasterCard      = "MasterCard"
	Visa            = "Visa"
	Unknown         = "Unknown"
)

// Issuer describes a card network: the pattern a full number must match
// (prefix and accepted length) and the pattern its security code must match.
type Issuer struct {
	Name   string
	Number *regexp.Regexp
	CSC    *regexp.Regexp
}

var (
	csc3 = regexp.MustCompile(`^\d{3}$`)
	csc4 = regexp.MustCompile(`^\d{4}$`)
)

// issuers is evaluated in order and the first match wins. The number
// patterns do not overlap, so order only matters for readability.
var issuers = []Issuer{
	{
		Name:   AmericanExpress,
		Number: regexp.MustCompile(`^3[47]\d{13}$`),
		CSC:    csc4,
	},
	{
		Name:   DinersClub,
		Number: regexp.MustCompile(`^3(?:0[0-5]|[68]\d)\d{11}$`),
		CSC:    csc3,
	},
	{
		Name:   Discover,
		Number: regexp.MustCompile(`^6(?:011|5\d{2})\d{12}$`),
		CSC:    csc3,
	},
	{
		Name:   JCB,
		Number: regexp.MustCompile(`^(?:35(?:2[89]|[3-8]\d)\d{12}|(?:2131|1800)\d{11})$`),
		CSC:    csc3,
	},
	{
		// 51-55 and the 2221-2720 range
		Name:   MasterCard,
		Number: regexp.MustCompile(`^(?:5[1-5]\d{2}|222[1-9]|22[3-9]\d|2[3-6]\d{2}|27[01]\d|2720)\d{12}$`),
		CSC:    csc3,
	},
	{
		Name:   Visa,
		Number: regexp.MustCompile(`^4(?:\d{12}|\d{15})$`),
		CSC:    csc3,
	},
}

var unknown = Issuer{
	Name:   Unknown,
	Number: regexp.MustCompile(`^\d+$`),
	CSC:    regexp.MustCompile(`^\d{3,4}$`),
}

// Detect returns the issuer whose number pattern matches digits, or the
// Unknown issuer with permissive patterns when nothing matches.
func Detect(digits string) Issuer {
	for _, is := range issuers {
		if is.Number.MatchString(digits) {
			return is
		}
	}
	return unknown
}

// IssuerName is shorthand for Detect(digits).Name.
func IssuerName(digits string) string {
	return Detect(digits).Name
}
