package qri

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = "QRIv1-20240102030405678-00112233445566778899aabbccddeeff"

func TestSignVerifyRSA(t *testing.T) {
	loadKeys(t)

	sig := Sign(testPayload, rsaKey.privatePEM)
	require.NotEmpty(t, sig)
	assert.Len(t, sig, 512)
	assert.True(t, isLowerHex(sig, -1))

	assert.True(t, Verify(testPayload, sig, rsaKey.publicPEM))
	assert.False(t, Verify(testPayload+"0", sig, rsaKey.publicPEM))
	assert.False(t, Verify(testPayload, sig, rsaOther.publicPEM))
}

func TestSignKeepsNaturalLength(t *testing.T) {
	loadKeys(t)

	sig := Sign(testPayload, rsaLarge.privatePEM)
	assert.Len(t, sig, 768)
	assert.True(t, Verify(testPayload, sig, rsaLarge.publicPEM))
}

func TestSignVerifyEd25519AndECDSA(t *testing.T) {
	loadKeys(t)

	for name, k := range map[string]testKey{"ed25519": edKey, "ecdsa": ecKey} {
		t.Run(name, func(t *testing.T) {
			sig, err := TrySign(testPayload, k.privatePEM)
			require.NoError(t, err)
			require.NoError(t, VerifyWith(k.signer.Public(), testPayload, sig))
			assert.True(t, Verify(testPayload, sig, k.publicPEM))
			assert.False(t, Verify(testPayload+"1", sig, k.publicPEM))
		})
	}
	assert.Len(t, Sign(testPayload, edKey.privatePEM), 128)
}

func TestSignFailuresYieldEmpty(t *testing.T) {
	loadKeys(t)

	assert.Equal(t, "", Sign(testPayload, ""))
	assert.Equal(t, "", Sign(testPayload, "not a key"))
	assert.Equal(t, "", Sign(testPayload, rsaKey.publicPEM))

	_, err := TrySign(testPayload, "")
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)
	_, err = TrySign(testPayload, "garbage")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = SignWith(nil, testPayload)
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)
}

func TestVerifyFailsClosed(t *testing.T) {
	loadKeys(t)
	sig := Sign(testPayload, rsaKey.privatePEM)
	pub := rsaKey.signer.Public()

	assert.False(t, Verify(testPayload, sig, ""))
	assert.False(t, Verify(testPayload, sig, "-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"))
	assert.False(t, Verify(testPayload, "", rsaKey.publicPEM))
	assert.False(t, Verify(testPayload, "zz", rsaKey.publicPEM))

	assert.ErrorIs(t, VerifyWith(nil, testPayload, sig), ErrPublicKeyRequired)
	assert.ErrorIs(t, VerifyWith(pub, testPayload, ""), ErrMissingSignature)
	assert.ErrorIs(t, VerifyWith(pub, testPayload, strings.ToUpper(sig)), ErrMalformedField)
	assert.ErrorIs(t, VerifyWith(pub, testPayload, sig[:510]), ErrSignatureLength)
	assert.ErrorIs(t, VerifyWith(pub, testPayload, sig+"00"), ErrSignatureLength)
	assert.ErrorIs(t, VerifyWith(pub, testPayload, flip(sig, 10)), ErrSignatureInvalid)
}

func TestParsePublicKeyFormats(t *testing.T) {
	loadKeys(t)
	rsaPriv := rsaKey.signer.(*rsa.PrivateKey)

	pkcs1Pub := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&rsaPriv.PublicKey)}))
	pkcs1Priv := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaPriv)}))

	sig := Sign(testPayload, pkcs1Priv)
	require.NotEmpty(t, sig)

	for name, text := range map[string]string{
		"pkix":                 rsaKey.publicPEM,
		"pkcs1":                pkcs1Pub,
		"private key as pub":   rsaKey.privatePEM,
		"pkcs1 private as pub": pkcs1Priv,
	} {
		t.Run(name, func(t *testing.T) {
			pub, err := ParsePublicKey(text)
			require.NoError(t, err)
			assert.NoError(t, VerifyWith(pub, testPayload, sig))
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	_, err := ParsePrivateKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParsePublicKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)

	other := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: []byte{1}}))
	_, err = ParsePrivateKey(other)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParsePublicKey(other)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSignatureLength(t *testing.T) {
	loadKeys(t)

	assert.Equal(t, 512, SignatureLength(rsaKey.signer.Public()))
	assert.Equal(t, 768, SignatureLength(rsaLarge.signer.Public()))
	assert.Equal(t, 128, SignatureLength(edKey.signer.Public()))
	assert.Equal(t, 0, SignatureLength(ecKey.signer.Public()))
}
