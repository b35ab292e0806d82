package storage

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// IDRandomBytes is 16 bytes (128 bits) per spec §3's "opaque 128-bit
// identifier rendered as text".
const IDRandomBytes = 16

// GenerateID mirrors the teacher's db.GenerateID convention, generalized to
// every entity kind via its prefix. The hex part is the 16 bytes of a
// google/uuid version-4 UUID: 122 random bits plus the fixed version and
// variant bits.
func GenerateID(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	raw := id[:]
	return prefix + "_" + hex.EncodeToString(raw), nil
}

// GenerateToken generates an opaque session token of the given byte length
// (spec §3: "optional active session token (opaque 128-bit)").
func GenerateToken(numBytes int) (string, error) {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateInviteCode generates an 8-character short slug (spec §3 Invite).
func GenerateInviteCode() (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i, v := range b {
		b[i] = alphabet[int(v)%len(alphabet)]
	}
	return string(b), nil
}
