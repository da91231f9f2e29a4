package check

// ValidCSC reports whether csc is all digits and has the length the issuer
// of number expects: 4 for American Express, 3 for the known issuers, and
// 3 or 4 when the issuer is unknown.
func ValidCSC(number, csc string) bool {
	return Detect(number).CSC.MatchString(csc)
}

// CSCLength returns the expected security code length for number, or 0
// when the issuer is unknown and either 3 or 4 digits is accepted.
func CSCLength(number string) int {
	return IssuerCSCLength(Detect(number).Name)
}

// IssuerCSCLength is CSCLength for an issuer name as returned by Detect.
func IssuerCSCLength(name string) int {
	switch name {
	case AmericanExpress:
		return 4
	case DinersClub, Discover, JCB, MasterCard, Visa:
		return 3
	default:
		return 0
	}
}
