package keys

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/storage"
)

var (
	ErrNoSigningKey = errors.New("no signing key configured")
	ErrKeyNotFound  = errors.New("key not found")
)

const (
	privateSuffix = ".pem"
	publicSuffix  = ".pub.pem"
)

// Keyring holds the signing key and named verification keys. It is built
// once at startup and read-only afterwards.
type Keyring struct {
	signer   crypto.Signer
	signerID string
	public   map[string]crypto.PublicKey
}

// New returns an empty keyring.
func New() *Keyring {
	return &Keyring{public: make(map[string]crypto.PublicKey)}
}

// SetSigner installs the signing key; its public half is registered under id.
func (k *Keyring) SetSigner(id string, signer crypto.Signer) {
	k.signer = signer
	k.signerID = id
	k.public[id] = signer.Public()
}

// AddPublicKey registers a verification key under id.
func (k *Keyring) AddPublicKey(id string, pub crypto.PublicKey) {
	k.public[id] = pub
}

// Signer returns the signing key and its ID.
func (k *Keyring) Signer() (crypto.Signer, string, error) {
	if k.signer == nil {
		return nil, "", ErrNoSigningKey
	}
	return k.signer, k.signerID, nil
}

// PublicKey returns the verification key registered under id. An empty id
// selects the signing key's public half.
func (k *Keyring) PublicKey(id string) (crypto.PublicKey, error) {
	if id == "" {
		if k.signer == nil {
			return nil, ErrNoSigningKey
		}
		id = k.signerID
	}
	pub, ok := k.public[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}
	return pub, nil
}

// IDs returns the registered verification key IDs in order.
func (k *Keyring) IDs() []string {
	ids := make([]string, 0, len(k.public))
	for id := range k.public {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load builds a keyring from PEM objects in store.
func Load(ctx context.Context, store storage.Storage, cfg config.KeysConfig) (*Keyring, error) {
	l := log.Ctx(ctx)
	kr := New()

	if cfg.SigningKey != "" {
		text, err := storage.ReadString(ctx, store, cfg.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}
		signer, err := qri.ParsePrivateKey(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signing key %s: %w", cfg.SigningKey, err)
		}
		id := cfg.SigningKeyID
		if id == "" {
			id = keyID(cfg.SigningKey)
		}
		kr.SetSigner(id, signer)
		l.Info().Str(log.FieldKeyID, id).Int("signature_length", qri.SignatureLength(signer.Public())).Msg("signing key loaded")
	}

	if cfg.PublicKeyPrefix != "" {
		files, err := store.List(ctx, cfg.PublicKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list public keys: %w", err)
		}
		for _, f := range files {
			if !strings.HasSuffix(f.Key, publicSuffix) {
				continue
			}
			if err := kr.loadPublic(ctx, store, keyID(f.Key), f.Key); err != nil {
				return nil, err
			}
		}
	}

	for id, key := range cfg.PublicKeys {
		if err := kr.loadPublic(ctx, store, id, key); err != nil {
			return nil, err
		}
	}

	l.Info().Strs("key_ids", kr.IDs()).Msg("keyring loaded")
	return kr, nil
}

func (k *Keyring) loadPublic(ctx context.Context, store storage.Storage, id, key string) error {
	text, err := storage.ReadString(ctx, store, key)
	if err != nil {
		return fmt.Errorf("failed to read public key %s: %w", id, err)
	}
	pub, err := qri.ParsePublicKey(text)
	if err != nil {
		return fmt.Errorf("failed to parse public key %s: %w", id, err)
	}
	k.AddPublicKey(id, pub)
	return nil
}

// keyID derives a key ID from a storage key: "keys/partner.pub.pem" -> "partner".
func keyID(key string) string {
	base := path.Base(key)
	base = strings.TrimSuffix(base, publicSuffix)
	return strings.TrimSuffix(base, privateSuffix)
}
