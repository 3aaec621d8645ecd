package query

import "regexp"

// TokenKind classifies one whitespace-delimited query token. Every token gets
// exactly one kind; the kinds decide which columns it is matched against.
type TokenKind int

const (
	// TokenFullDate matches dateText by exact equality (DD-MM-YYYY shape).
	TokenFullDate TokenKind = iota
	// TokenYear (four digits) matches as a substring of dateText and summary.
	TokenYear
	// TokenCode (letters then digits, bounded length) matches as a substring
	// of summary and title.
	TokenCode
	// TokenGeneric matches any of the text fields.
	TokenGeneric
)

var (
	reFullDate = regexp.MustCompile(`^\d{2}[-/]\d{2}[-/]\d{4}$`)
	reYear     = regexp.MustCompile(`^\d{4}$`)
	reCode     = regexp.MustCompile(`^[A-Za-z]{2,5}\d{1,4}$`)
)

// Classify assigns a kind to one token.
func Classify(token string) TokenKind {
	switch {
	case reFullDate.MatchString(token):
		return TokenFullDate
	case reYear.MatchString(token):
		return TokenYear
	case reCode.MatchString(token):
		return TokenCode
	default:
		return TokenGeneric
	}
}
