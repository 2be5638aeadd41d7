package vietqr

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	asciiAlnumMaxLength   = 25
	transferNoteMaxLength = 50
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripDiacritics folds accented characters to their base ASCII letter.
// The Vietnamese đ/Đ carry no combining mark and are replaced explicitly.
func stripDiacritics(input string) string {
	replaced := strings.NewReplacer("đ", "d", "Đ", "D").Replace(input)
	out, _, err := transform.String(diacriticStripper, replaced)
	if err != nil {
		return replaced
	}
	return out
}

func stripNonPrintableASCII(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeAsciiAlnumCore(input string) string {
	cleaned := stripNonPrintableASCII(stripDiacritics(input))

	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > asciiAlnumMaxLength {
		out = out[:asciiAlnumMaxLength]
	}
	return out
}

func normalizeTransferNoteCore(input string) string {
	cleaned := strings.ToUpper(stripNonPrintableASCII(stripDiacritics(input)))

	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > transferNoteMaxLength {
		out = strings.TrimSpace(out[:transferNoteMaxLength])
	}
	return out
}

// NormalizeAsciiAlnum reduces input to uppercase ASCII alphanumerics,
// folding diacritics first, capped at 25 characters. The fallback is
// normalized the same way when the input sanitizes to empty.
func NormalizeAsciiAlnum(input, fallback string) string {
	if out := normalizeAsciiAlnumCore(input); out != "" {
		return out
	}
	return normalizeAsciiAlnumCore(fallback)
}

// NormalizeTransferNote reduces input to the transfer-note alphabet
// [A-Z0-9 -], collapsing whitespace runs, capped at 50 characters. The
// fallback is normalized the same way when the input sanitizes to empty.
func NormalizeTransferNote(input, fallback string) string {
	if out := normalizeTransferNoteCore(input); out != "" {
		return out
	}
	return normalizeTransferNoteCore(fallback)
}

// DigitsOnly keeps only ASCII digits.
func DigitsOnly(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
