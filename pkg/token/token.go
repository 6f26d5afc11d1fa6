package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	publicIDAlphabet          = "0123456789abcdefghijklmnopqrstuvwxyz"
	PublicIDLength            = 8
	sessionTokenBytes         = 16
	errGenerateRandomBytesFmt = "failed to generate random bytes: %w"
	errLengthPositiveFmt      = "length must be positive"
	errByteLengthPositiveFmt  = "byteLength must be positive"
)

// NewID returns a random identifier for stored entities.
func NewID() string {
	return uuid.NewString()
}

// Generate returns a random lower-case base36 string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf(errLengthPositiveFmt)
	}

	base := big.NewInt(int64(len(publicIDAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
		}
		out[i] = publicIDAlphabet[n.Int64()]
	}

	return string(out), nil
}

func GenerateHex(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf(errByteLengthPositiveFmt)
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}

	return hex.EncodeToString(bytes), nil
}

// GeneratePublicID returns the fragment appended to a project's public link.
func GeneratePublicID() (string, error) {
	return Generate(PublicIDLength)
}

// GenerateSessionID returns an unguessable onboarding session id.
func GenerateSessionID() (string, error) {
	return GenerateHex(sessionTokenBytes)
}
