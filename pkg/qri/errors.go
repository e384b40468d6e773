package qri

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat      = errors.New("invalid QRI format")
	ErrMalformedField     = errors.New("malformed QRI field")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrMissingSignature   = errors.New("signature missing")
	ErrSignatureInvalid   = errors.New("signature invalid")
	ErrSignatureLength    = errors.New("unexpected signature length")
	ErrSigningFailed      = errors.New("signing failed")
	ErrPublicKeyRequired  = errors.New("public key is required")
	ErrPrivateKeyRequired = errors.New("private key is required")
	ErrInvalidKey         = errors.New("invalid key material")
	ErrUnsupportedKey     = errors.New("unsupported key type")
)

// FormatError reports text that does not follow the QRI grammar.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

func fieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrMalformedField, field, reason)
}
