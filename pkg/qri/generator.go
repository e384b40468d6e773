package qri

import (
	"crypto"
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

// Generator creates identifiers. A Generator holds no mutable state and is
// safe for concurrent use.
type Generator struct {
	now       func() time.Time
	entropy   io.Reader
	utc       bool
	sigLength int
}

// Option configures a Generator.
type Option func(*Generator)

// WithUTC renders timestamps in UTC instead of the clock's location.
func WithUTC() Option {
	return func(g *Generator) { g.utc = true }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy replaces crypto/rand as the source of random segments. The
// reader must be safe for concurrent use if the Generator is shared.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// WithSignatureLength pins the hex length every signature must have. A
// signature of any other length is rejected, never truncated. Zero keeps the
// length implied by the key.
func WithSignatureLength(n int) Option {
	return func(g *Generator) { g.sigLength = n }
}

// NewGenerator returns a Generator using the local clock and crypto/rand.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:     time.Now,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Options are the per-call generation options.
type Options struct {
	// PrivateKey is a PEM private key. When set, the identifier is signed.
	PrivateKey string
}

// Generate returns a fresh identifier, signed when opts.PrivateKey is set.
// A key that cannot sign leaves the signature empty instead of failing; only
// an entropy failure is returned as an error.
func (g *Generator) Generate(opts Options) (Identifier, error) {
	id, err := g.unsigned()
	if err != nil || opts.PrivateKey == "" {
		return id, err
	}

	key, err := ParsePrivateKey(opts.PrivateKey)
	if err != nil {
		return id, nil
	}
	if sig, err := g.sign(key, id.Payload()); err == nil {
		id.signature = sig
	}
	return id, nil
}

// GenerateSigned returns a fresh identifier signed with key. Unlike Generate
// it reports signing failures.
func (g *Generator) GenerateSigned(key crypto.Signer) (Identifier, error) {
	if key == nil {
		return Identifier{}, ErrPrivateKeyRequired
	}
	id, err := g.unsigned()
	if err != nil {
		return Identifier{}, err
	}
	sig, err := g.sign(key, id.Payload())
	if err != nil {
		return Identifier{}, err
	}
	id.signature = sig
	return id, nil
}

// GenerateBatch returns count identifiers, signed with key when it is not nil.
func (g *Generator) GenerateBatch(count int, key crypto.Signer) ([]Identifier, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	ids := make([]Identifier, 0, count)
	for i := 0; i < count; i++ {
		var (
			id  Identifier
			err error
		)
		if key != nil {
			id, err = g.GenerateSigned(key)
		} else {
			id, err = g.unsigned()
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *Generator) unsigned() (Identifier, error) {
	t := g.now()
	if g.utc {
		t = t.UTC()
	}
	ts := EncodeTimestamp(t)
	if !isDigits(ts, TimestampLength) {
		return Identifier{}, fmt.Errorf("timestamp %q does not fit %d digits", ts, TimestampLength)
	}

	random, err := randomSegment(g.entropy)
	if err != nil {
		return Identifier{}, err
	}

	id := New(ts, random, "", "")
	id.checksum = Checksum(id.Payload())
	return id, nil
}

func (g *Generator) sign(key crypto.Signer, payload string) (string, error) {
	sig, err := SignWith(key, payload)
	if err != nil {
		return "", err
	}
	if g.sigLength > 0 && len(sig) != g.sigLength {
		return "", fmt.Errorf("%w: got %d hex characters, want %d", ErrSignatureLength, len(sig), g.sigLength)
	}
	return sig, nil
}

var defaultGenerator = NewGenerator()

// Generate creates an identifier with the default generator.
func Generate(opts Options) (Identifier, error) {
	return defaultGenerator.Generate(opts)
}

// Must panics if err is non-nil and returns id otherwise.
func Must(id Identifier, err error) Identifier {
	if err != nil {
		panic(err)
	}
	return id
}

// NewString returns a fresh unsigned identifier string.
func NewString() string {
	return Must(Generate(Options{})).String()
}
