// Package qri implements QRI identifiers: compact, self-describing strings of
// the form
//
//	QRIv1-<timestamp>-<random>-<checksum>[-<signature>]
//
// The timestamp is 17 decimal digits (yyyyMMddHHmmssSSS), the random segment
// is 16 CSPRNG bytes as 32 lowercase hex characters, and the checksum is the
// first 32 hex characters of SHA-512 over the canonical payload
// "QRIv1-<timestamp>-<random>". The optional signature is an asymmetric
// signature over the same payload, hex-encoded at its natural length.
//
// Timestamps are rendered in the civil time of the generator's clock. The
// default generator uses the host's local time zone, so identifiers produced
// on hosts with different zone settings are not directly time-comparable. Use
// WithUTC when that matters.
//
// Parse never checks field widths or alphabets; Validator does. Parse is
// strict about segment count: text with more than five segments is rejected
// rather than truncated to the first five.
package qri
