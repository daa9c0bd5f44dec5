package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes of a password.
const maxPwdBytes = 72

func truncatePwd(pwd string) []byte {
	b := []byte(pwd)
	if len(b) > maxPwdBytes {
		b = b[:maxPwdBytes]
	}
	return b
}

// HashPwd hashes a password with the given bcrypt cost. Bytes past the 72nd
// are ignored, the same on both hashing and checking.
func HashPwd(pwd string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(truncatePwd(pwd), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPwd verifies a password hash.
func CheckPwd(pwd string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePwd(pwd)) == nil
}
