package codes

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// codeAlphabet holds 32 symbols with visually ambiguous characters
// (0/O, 1/I) removed.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// codeLength is the number of random symbols after the prefix.
const codeLength = 6

// CodePrefix starts every group code.
const CodePrefix = "SANTA-"

// NewID returns a fresh opaque identifier for groups and participants.
func NewID() string {
	return uuid.NewString()
}

// NewGroupCode returns a short human-shareable group code such as
// SANTA-7KQ2XF. Symbols are drawn from a crypto-strength source; uniqueness
// is enforced by the store, callers retry on collision.
func NewGroupCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return CodePrefix + string(buf), nil
}
