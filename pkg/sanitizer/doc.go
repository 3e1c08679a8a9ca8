// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent. Invalid input is handled by returning an empty
// string rather than an error, leaving rejection to the validators.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number])
//   - Emails: trimmed and lowercased
//   - Names: collapsed whitespace, trimmed
//   - Car numbers: uppercased, inner whitespace removed
package sanitizer
