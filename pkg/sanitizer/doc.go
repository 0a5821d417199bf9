// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent and tolerant: invalid input yields an empty
// value rather than an error, leaving rejection to the validators.
//
// Normalization includes:
//   - Text: collapse whitespace runs, trim
//   - URLs: enforce https, lowercase host, drop tracking parameters
//   - Search terms: collapse whitespace and escape regular expression syntax
//   - Slices: drop duplicates and values that normalize to empty
//   - Prices: round to cents
package sanitizer
