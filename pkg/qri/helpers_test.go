package qri

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testKey struct {
	signer     crypto.Signer
	privatePEM string
	publicPEM  string
}

var (
	keysOnce sync.Once
	rsaKey   testKey
	rsaOther testKey
	rsaLarge testKey
	edKey    testKey
	ecKey    testKey
	keysErr  error
)

func loadKeys(t *testing.T) {
	t.Helper()
	keysOnce.Do(func() {
		mk := func(signer crypto.Signer) testKey {
			if keysErr != nil {
				return testKey{}
			}
			priv, err := EncodePrivateKey(signer)
			if err != nil {
				keysErr = err
				return testKey{}
			}
			pub, err := EncodePublicKey(signer.Public())
			if err != nil {
				keysErr = err
				return testKey{}
			}
			return testKey{signer: signer, privatePEM: priv, publicPEM: pub}
		}

		k2048, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			keysErr = err
			return
		}
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			keysErr = err
			return
		}
		large, err := rsa.GenerateKey(rand.Reader, 3072)
		if err != nil {
			keysErr = err
			return
		}
		_, ed, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			keysErr = err
			return
		}
		ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			keysErr = err
			return
		}

		rsaKey = mk(k2048)
		rsaOther = mk(other)
		rsaLarge = mk(large)
		edKey = mk(ed)
		ecKey = mk(ec)
	})
	require.NoError(t, keysErr)
}

// flip replaces the character at i with a different character of the same
// alphabet.
func flip(s string, i int) string {
	b := []byte(s)
	switch {
	case b[i] == '0':
		b[i] = '1'
	case b[i] >= '1' && b[i] <= '9':
		b[i] = '0'
	case b[i] == 'a':
		b[i] = 'b'
	default:
		b[i] = 'a'
	}
	return string(b)
}
