package qri

import (
	"strings"
)

const (
	// Version tags the format revision.
	Version = "QRIv1"
	// Delimiter separates fields. No field alphabet contains it.
	Delimiter = "-"

	TimestampLength = 17
	RandomBytes     = 16
	RandomLength    = RandomBytes * 2
	ChecksumLength  = 32
)

// Identifier is an immutable QRI value. Values are created by a Generator or
// by Parse; the zero value is not a valid identifier.
type Identifier struct {
	version   string
	timestamp string
	random    string
	checksum  string
	signature string
}

// New assembles an identifier from its fields without checking them.
func New(timestamp, random, checksum, signature string) Identifier {
	return Identifier{
		version:   Version,
		timestamp: timestamp,
		random:    random,
		checksum:  checksum,
		signature: signature,
	}
}

func (id Identifier) Version() string   { return id.version }
func (id Identifier) Timestamp() string { return id.timestamp }
func (id Identifier) Random() string    { return id.random }
func (id Identifier) Checksum() string  { return id.checksum }

// Signature returns the hex signature, or "" when the identifier is unsigned.
func (id Identifier) Signature() string { return id.signature }

func (id Identifier) Signed() bool { return id.signature != "" }

func (id Identifier) IsZero() bool { return id == Identifier{} }

// Payload returns the canonical payload the checksum and signature cover.
func (id Identifier) Payload() string {
	return Payload(id.version, id.timestamp, id.random)
}

// String serializes the identifier. The signature segment is appended only
// when present.
func (id Identifier) String() string {
	var b strings.Builder
	b.Grow(len(id.version) + len(id.timestamp) + len(id.random) + len(id.checksum) + len(id.signature) + 4)
	b.WriteString(id.version)
	b.WriteString(Delimiter)
	b.WriteString(id.timestamp)
	b.WriteString(Delimiter)
	b.WriteString(id.random)
	b.WriteString(Delimiter)
	b.WriteString(id.checksum)
	if id.signature != "" {
		b.WriteString(Delimiter)
		b.WriteString(id.signature)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Payload joins version, timestamp and random segment with the delimiter.
func Payload(version, timestamp, random string) string {
	return version + Delimiter + timestamp + Delimiter + random
}

// Parse splits text into an identifier. It fails with a *FormatError when
// there are fewer than four or more than five segments, or when the version
// tag is not Version. Field contents are taken verbatim.
func Parse(text string) (Identifier, error) {
	parts := strings.Split(text, Delimiter)
	if len(parts) < 4 {
		return Identifier{}, &FormatError{Input: text, Reason: "expected at least 4 segments"}
	}
	if len(parts) > 5 {
		return Identifier{}, &FormatError{Input: text, Reason: "expected at most 5 segments"}
	}
	if parts[0] != Version {
		return Identifier{}, &FormatError{Input: text, Reason: "unknown version tag " + quote(parts[0])}
	}

	var signature string
	if len(parts) == 5 {
		signature = parts[4]
	}
	return New(parts[1], parts[2], parts[3], signature), nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Identifier {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

func quote(s string) string {
	const limit = 16
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return `"` + s + `"`
}
