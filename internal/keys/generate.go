package keys

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/storage"
)

const (
	// DefaultRSABits yields 512-hex-character signatures.
	DefaultRSABits = 2048
	minRSABits     = 2048

	pemContentType = "application/x-pem-file"
)

var ErrKeyExists = errors.New("key already exists")

// KeyPair is PEM-encoded key material.
type KeyPair struct {
	PrivatePEM string
	PublicPEM  string
}

// GenerateRSA creates an RSA key pair of the given modulus size.
func GenerateRSA(bits int) (*KeyPair, error) {
	if bits < minRSABits {
		return nil, fmt.Errorf("rsa key size must be at least %d bits, got %d", minRSABits, bits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}
	return encode(key)
}

// GenerateEd25519 creates an Ed25519 key pair.
func GenerateEd25519() (*KeyPair, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}
	return encode(key)
}

func encode(key crypto.Signer) (*KeyPair, error) {
	priv, err := qri.EncodePrivateKey(key)
	if err != nil {
		return nil, err
	}
	pub, err := qri.EncodePublicKey(key.Public())
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivatePEM: priv, PublicPEM: pub}, nil
}

// Save writes kp to store as "<name>.pem" and "<name>.pub.pem" and returns
// the two storage keys. Existing keys are kept unless overwrite is set.
func Save(ctx context.Context, store storage.Storage, name string, kp *KeyPair, overwrite bool) (privateKey, publicKey string, err error) {
	privateKey = name + privateSuffix
	publicKey = name + publicSuffix

	if !overwrite {
		for _, key := range []string{privateKey, publicKey} {
			exists, err := store.Exists(ctx, key)
			if err != nil {
				return "", "", err
			}
			if exists {
				return "", "", fmt.Errorf("%w: %s", ErrKeyExists, key)
			}
		}
	}

	if err := store.Write(ctx, privateKey, bytes.NewReader([]byte(kp.PrivatePEM)), int64(len(kp.PrivatePEM)), pemContentType); err != nil {
		return "", "", err
	}
	if err := store.Write(ctx, publicKey, bytes.NewReader([]byte(kp.PublicPEM)), int64(len(kp.PublicPEM)), pemContentType); err != nil {
		return "", "", err
	}
	return privateKey, publicKey, nil
}
