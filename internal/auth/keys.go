package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashKey creates a bcrypt hash of the given key.
func HashKey(key string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("hash key: %w", err)
	}
	return string(hash), nil
}

// CheckKey verifies a key against a bcrypt hash.
func CheckKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
