package keys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/storage"
)

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestGenerateRSA(t *testing.T) {
	kp, err := GenerateRSA(DefaultRSABits)
	require.NoError(t, err)

	sig := qri.Sign("payload", kp.PrivatePEM)
	assert.Len(t, sig, 512)
	assert.True(t, qri.Verify("payload", sig, kp.PublicPEM))

	_, err = GenerateRSA(1024)
	assert.Error(t, err)
}

func TestGenerateEd25519(t *testing.T) {
	kp, err := GenerateEd25519()
	require.NoError(t, err)
	assert.True(t, qri.Verify("payload", qri.Sign("payload", kp.PrivatePEM), kp.PublicPEM))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	signing, err := GenerateEd25519()
	require.NoError(t, err)
	partner, err := GenerateEd25519()
	require.NoError(t, err)
	extra, err := GenerateEd25519()
	require.NoError(t, err)

	privKey, pubKey, err := Save(ctx, store, "signing", signing, false)
	require.NoError(t, err)
	assert.Equal(t, "signing.pem", privKey)
	assert.Equal(t, "signing.pub.pem", pubKey)

	_, _, err = Save(ctx, store, "signing", signing, false)
	assert.ErrorIs(t, err, ErrKeyExists)
	_, _, err = Save(ctx, store, "signing", signing, true)
	require.NoError(t, err)

	_, _, err = Save(ctx, store, "trusted/partner", partner, false)
	require.NoError(t, err)
	_, _, err = Save(ctx, store, "extra", extra, false)
	require.NoError(t, err)

	kr, err := Load(ctx, store, config.KeysConfig{
		SigningKey:      privKey,
		SigningKeyID:    "primary",
		PublicKeyPrefix: "trusted/",
		PublicKeys:      map[string]string{"third": "extra.pub.pem"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"partner", "primary", "third"}, kr.IDs())

	signer, id, err := kr.Signer()
	require.NoError(t, err)
	assert.Equal(t, "primary", id)

	sig, err := qri.SignWith(signer, "payload")
	require.NoError(t, err)

	pub, err := kr.PublicKey("")
	require.NoError(t, err)
	assert.NoError(t, qri.VerifyWith(pub, "payload", sig))

	partnerPub, err := kr.PublicKey("partner")
	require.NoError(t, err)
	assert.Error(t, qri.VerifyWith(partnerPub, "payload", sig))

	_, err = kr.PublicKey("unknown")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLoadWithoutSigningKey(t *testing.T) {
	kr, err := Load(context.Background(), newStore(t), config.KeysConfig{})
	require.NoError(t, err)

	_, _, err = kr.Signer()
	assert.ErrorIs(t, err, ErrNoSigningKey)
	_, err = kr.PublicKey("")
	assert.ErrorIs(t, err, ErrNoSigningKey)
	assert.Empty(t, kr.IDs())
}

func TestLoadMissingKey(t *testing.T) {
	_, err := Load(context.Background(), newStore(t), config.KeysConfig{SigningKey: "missing.pem"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKeyID(t *testing.T) {
	assert.Equal(t, "partner", keyID("keys/partner.pub.pem"))
	assert.Equal(t, "signing", keyID("signing.pem"))
}
