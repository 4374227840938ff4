package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// HashSecret returns the bcrypt hash expected in EXECUTOR_SECRET_HASH.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	return string(bytes), err
}

func CheckSecretHash(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
