package pii

import (
	"regexp"

	"transcript-ingest/pkg/domain"
)

const (
	TypeEmail = "email"
	TypePhone = "phone"

	RedactedEmail = "[REDACTED_EMAIL]"
	RedactedPhone = "[REDACTED_PHONE]"

	// minPhoneDigits is the acceptance threshold shared by Detect and Redact.
	// Digit runs shorter than this are not phones (times, counts, years).
	minPhoneDigits = 10
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)

	// Very loose phone pattern: a digit-rich run with optional separators.
	// Candidates are filtered by minPhoneDigits afterwards.
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
)

// Detect scans text left to right and returns every email and phone-like
// occurrence. Pure and stateless; returns nil when nothing is found.
func Detect(text string) []domain.PIIFlag {
	var flags []domain.PIIFlag
	for _, m := range emailPattern.FindAllString(text, -1) {
		flags = append(flags, domain.PIIFlag{Type: TypeEmail, Value: m})
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		if digitCount(m) >= minPhoneDigits {
			flags = append(flags, domain.PIIFlag{Type: TypePhone, Value: m})
		}
	}
	return flags
}

// Redact replaces detected emails and phone numbers with fixed tokens.
// It uses the identical acceptance predicate as Detect, so detected and
// redacted spans always agree.
func Redact(text string) string {
	text = emailPattern.ReplaceAllString(text, RedactedEmail)
	return phonePattern.ReplaceAllStringFunc(text, func(m string) string {
		if digitCount(m) >= minPhoneDigits {
			return RedactedPhone
		}
		return m
	})
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
