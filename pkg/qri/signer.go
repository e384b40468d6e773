package qri

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// SignWith signs payload with key and returns the signature as lowercase
// hex at its natural length. RSA keys sign SHA-512 digests with PKCS#1 v1.5,
// ECDSA keys sign SHA-512 digests in ASN.1 form, Ed25519 keys sign the
// payload directly.
func SignWith(key crypto.Signer, payload string) (string, error) {
	if key == nil {
		return "", ErrPrivateKeyRequired
	}

	pub := key.Public()
	if err := checkPublicKey(pub); err != nil {
		return "", err
	}

	var (
		sig []byte
		err error
	)
	if _, ok := pub.(ed25519.PublicKey); ok {
		sig, err = key.Sign(rand.Reader, []byte(payload), crypto.Hash(0))
	} else {
		digest := sha512.Sum512([]byte(payload))
		sig, err = key.Sign(rand.Reader, digest[:], crypto.SHA512)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	sigHex := hex.EncodeToString(sig)
	if want := SignatureLength(pub); want > 0 && len(sigHex) != want {
		return "", fmt.Errorf("%w: got %d hex characters, want %d", ErrSignatureLength, len(sigHex), want)
	}
	return sigHex, nil
}

// VerifyWith checks signatureHex over payload against pub. It returns nil
// only when the signature verifies.
func VerifyWith(pub crypto.PublicKey, payload, signatureHex string) error {
	if pub == nil {
		return ErrPublicKeyRequired
	}
	if signatureHex == "" {
		return ErrMissingSignature
	}
	if !isLowerHex(signatureHex, -1) {
		return fieldError("signature", "must be lowercase hex")
	}
	if want := SignatureLength(pub); want > 0 && len(signatureHex) != want {
		return fmt.Errorf("%w: got %d hex characters, want %d", ErrSignatureLength, len(signatureHex), want)
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fieldError("signature", err.Error())
	}

	digest := sha512.Sum512([]byte(payload))
	switch k := pub.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(k, crypto.SHA512, digest[:], sig); err != nil {
			return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(k, digest[:], sig) {
			return ErrSignatureInvalid
		}
	case ed25519.PublicKey:
		if !ed25519.Verify(k, []byte(payload), sig) {
			return ErrSignatureInvalid
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
	}
	return nil
}

// TrySign parses privateKeyPEM and signs payload, reporting why signing
// failed.
func TrySign(payload, privateKeyPEM string) (string, error) {
	if privateKeyPEM == "" {
		return "", ErrPrivateKeyRequired
	}
	key, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", err
	}
	return SignWith(key, payload)
}

// Sign is TrySign without the error: any failure yields "", which callers
// treat as "no signature".
func Sign(payload, privateKeyPEM string) string {
	sig, err := TrySign(payload, privateKeyPEM)
	if err != nil {
		return ""
	}
	return sig
}

// Verify reports whether signatureHex is a valid signature over payload for
// publicKeyPEM. Malformed input, unreadable keys and mismatches all yield
// false.
func Verify(payload, signatureHex, publicKeyPEM string) bool {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return false
	}
	return VerifyWith(pub, payload, signatureHex) == nil
}
