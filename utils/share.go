package utils

import (
	"crypto/rand"
	"fmt"
)

const linkTokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// LinkTokenLength is the default public link token length.
const LinkTokenLength = 22

// GenLinkToken returns n characters drawn uniformly from a 64 symbol alphabet.
func GenLinkToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be > 0")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	// 256 is a multiple of 64, so masking keeps the distribution uniform.
	for i := range buf {
		buf[i] = linkTokenChars[buf[i]&63]
	}
	return string(buf), nil
}
