package qri

import (
	"crypto"
	"fmt"
)

// Validator decides whether an identifier is intact and, optionally,
// authentic. The zero value follows the default policy: a signature is
// checked only when both a public key and a stored signature are present.
type Validator struct {
	// RequireSignature makes a supplied public key mean the signature is
	// mandatory; an unsigned identifier then fails with ErrMissingSignature.
	RequireSignature bool
	// SignatureLength, when non-zero, is the hex length every signature must
	// have.
	SignatureLength int
}

// Validate returns nil when id is well formed, its checksum matches and,
// if pub is non-nil and id is signed (or RequireSignature is set), its
// signature verifies against pub.
func (v Validator) Validate(id Identifier, pub crypto.PublicKey) error {
	if err := checkIntegrity(id); err != nil {
		return err
	}
	if pub == nil {
		return nil
	}
	return v.checkSignature(id, func() (crypto.PublicKey, error) { return pub, nil })
}

// ValidatePEM is Validate with the public key given as PEM text. An empty
// string means no key. A key that cannot be parsed fails validation only
// when the signature would have been checked.
func (v Validator) ValidatePEM(id Identifier, publicKeyPEM string) error {
	if err := checkIntegrity(id); err != nil {
		return err
	}
	if publicKeyPEM == "" {
		return nil
	}
	return v.checkSignature(id, func() (crypto.PublicKey, error) { return ParsePublicKey(publicKeyPEM) })
}

func (v Validator) checkSignature(id Identifier, key func() (crypto.PublicKey, error)) error {
	if !id.Signed() {
		if v.RequireSignature {
			return ErrMissingSignature
		}
		return nil
	}
	if v.SignatureLength > 0 && len(id.signature) != v.SignatureLength {
		return fmt.Errorf("%w: got %d hex characters, want %d", ErrSignatureLength, len(id.signature), v.SignatureLength)
	}
	pub, err := key()
	if err != nil {
		return err
	}
	return VerifyWith(pub, id.Payload(), id.signature)
}

func checkIntegrity(id Identifier) error {
	if err := checkFields(id); err != nil {
		return err
	}
	if Checksum(id.Payload()) != id.checksum {
		return ErrChecksumMismatch
	}
	return nil
}

// IsValid reports whether id passes the default validation policy.
// publicKeyPEM may be empty.
func IsValid(id Identifier, publicKeyPEM string) bool {
	return Validator{}.ValidatePEM(id, publicKeyPEM) == nil
}

// ValidateSignature checks only the signature of id. Unlike IsValid it
// fails with ErrPublicKeyRequired when publicKeyPEM is empty, so a missing
// key is not mistaken for a bad signature.
func ValidateSignature(id Identifier, publicKeyPEM string) (bool, error) {
	if publicKeyPEM == "" {
		return false, ErrPublicKeyRequired
	}
	return Verify(id.Payload(), id.signature, publicKeyPEM), nil
}
