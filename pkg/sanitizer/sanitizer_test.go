package sanitizer

import (
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Sea View Loft  ", "Sea View Loft"},
		{"collapse runs", "Sea    View\t\nLoft", "Sea View Loft"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"keeps symbols", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew", " דירה בתל אביב ", "דירה בתל אביב"},
		{"drops control characters", "Loft\x00\x07", "Loft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, TrimAndNormalize(got), "must be idempotent")
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	got := NormalizeDescription("  Bright   loft \r\n\n  near the   beach  ")
	assert.Equal(t, "Bright loft\n\nnear the beach", got)
}

func TestNormalizeForComparison(t *testing.T) {
	assert.Equal(t, NormalizeForComparison("Sea-View  Loft!"), NormalizeForComparison("sea view loft"))
	assert.Equal(t, "sea view loft", NormalizeForComparison(" Sea-View  Loft! "))
}

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		match string
		miss  string
	}{
		{"plain", "  tel   aviv ", "Apartment in Tel Aviv", "Telaviv"},
		{"regex syntax is literal", "a.b*", "flat a.b* east", "flat axbbb east"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := regexp.MustCompile("(?i)" + SearchPattern(tt.input))
			assert.True(t, re.MatchString(tt.match))
			assert.False(t, re.MatchString(tt.miss))
		})
	}

	assert.Equal(t, "", SearchPattern("   "))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"adds scheme", "Example.com/photos/1.jpg", "https://example.com/photos/1.jpg"},
		{"upgrades http", "http://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"drops utm", "https://example.com/p?utm_source=x&size=l", "https://example.com/p?size=l"},
		{"drops fragment and trailing slash", "https://example.com/p/#top", "https://example.com/p"},
		{"keeps path case", "https://example.com/IMG_01.JPG", "https://example.com/IMG_01.JPG"},
		{"rejects other schemes", "ftp://example.com/a", ""},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeURL(got), "must be idempotent")
		})
	}
}

func TestNormalizeURLs(t *testing.T) {
	got := NormalizeURLs([]string{"example.com/a", "https://EXAMPLE.com/a", "", "ftp://x"})
	assert.Equal(t, []string{"https://example.com/a"}, got)
	assert.Equal(t, []string{}, NormalizeURLs(nil))
}

func TestNormalizeStringSlice(t *testing.T) {
	got := NormalizeStringSlice([]string{" a ", "a", "", "b"}, TrimAndNormalize)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 99.99, RoundPrice(99.994))
	assert.Equal(t, 100.0, RoundPrice(99.996))
	assert.Equal(t, 0.0, RoundPrice(-3))
	assert.Equal(t, 0.0, RoundPrice(math.NaN()))
	assert.Equal(t, 0.0, RoundPrice(math.Inf(1)))
}

func TestNormalizeName_LongInput(t *testing.T) {
	input := strings.Repeat("  loft ", 10000)
	got := NormalizeName(input)
	assert.False(t, strings.Contains(got, "  "))
	assert.True(t, strings.HasPrefix(got, "loft loft"))
}
