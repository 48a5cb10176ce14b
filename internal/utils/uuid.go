package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func signID(id string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))[:16] // First 16 chars
}

// GenerateSignedID returns a random UUID followed by a truncated HMAC of it.
func GenerateSignedID(secret []byte) (string, error) {
	uuidObj, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	id := uuidObj.String()

	// Format: uuid-signature
	return fmt.Sprintf("%s-%s", id, signID(id, secret)), nil
}

// VerifySignedID checks an identifier produced by GenerateSignedID.
func VerifySignedID(signedID string, secret []byte) bool {
	parts := strings.Split(signedID, "-")
	if len(parts) != 6 { // uuid (5 parts) + signature (1 part)
		return false
	}

	id := strings.Join(parts[:5], "-")
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return hmac.Equal([]byte(parts[5]), []byte(signID(id, secret)))
}
