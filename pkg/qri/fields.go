package qri

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// EncodeTimestamp renders t as yyyyMMddHHmmssSSS in t's own location.
// Years outside 0..9999 do not fit the fixed width.
func EncodeTimestamp(t time.Time) string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d%03d",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Millisecond),
	)
}

// NewRandomSegment returns RandomBytes bytes from crypto/rand as lowercase hex.
func NewRandomSegment() (string, error) {
	return randomSegment(rand.Reader)
}

func randomSegment(r io.Reader) (string, error) {
	buf := make([]byte, RandomBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random segment: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Checksum returns the first ChecksumLength hex characters of SHA-512(payload).
func Checksum(payload string) string {
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:ChecksumLength/2])
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isLowerHex reports whether s is non-empty lowercase hex. n < 0 skips the
// length check.
func isLowerHex(s string, n int) bool {
	if s == "" || (n >= 0 && len(s) != n) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func checkFields(id Identifier) error {
	if id.version != Version {
		return fieldError("version", "must be "+Version)
	}
	if !isDigits(id.timestamp, TimestampLength) {
		return fieldError("timestamp", fmt.Sprintf("must be %d decimal digits", TimestampLength))
	}
	if !isLowerHex(id.random, RandomLength) {
		return fieldError("random segment", fmt.Sprintf("must be %d lowercase hex characters", RandomLength))
	}
	if !isLowerHex(id.checksum, ChecksumLength) {
		return fieldError("checksum", fmt.Sprintf("must be %d lowercase hex characters", ChecksumLength))
	}
	return nil
}
