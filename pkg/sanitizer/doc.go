// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty (phones) or unchanged (free text), leaving the
// decision to the validators.
package sanitizer
