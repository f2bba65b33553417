// Package sanitizer provides input normalization for booking and promo data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Promo codes: uppercase, strip everything but letters and digits - "summer-10" becomes "SUMMER10"
//   - Sports: lowercase, collapse whitespace - "Table  Tennis" becomes "table tennis"
//   - Identifiers: trim whitespace, reject embedded control characters
package sanitizer
