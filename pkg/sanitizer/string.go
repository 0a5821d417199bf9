package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reNonAlnum = regexp.MustCompile(`[^0-9\p{L}]+`)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeAddress(address string) string {
	return TrimAndNormalize(address)
}

// NormalizeDescription keeps line breaks and trims each line.
func NormalizeDescription(description string) string {
	lines := strings.Split(strings.ReplaceAll(description, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeForComparison folds case and punctuation so that "Sea-View Loft"
// and "sea view loft" compare equal.
func NormalizeForComparison(s string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
		func(s string) string { return reNonAlnum.ReplaceAllString(s, " ") },
		TrimAndNormalize,
	}
	return p.Apply(s)
}

// SearchPattern turns free text into a literal, case-insensitive regular
// expression fragment. Blank input yields "".
func SearchPattern(q string) string {
	return regexp.QuoteMeta(TrimAndNormalize(q))
}
