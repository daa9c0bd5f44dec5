package service

import (
	"crypto/subtle"

	"MiniDrive/internal/apperr"
)

const msgBadSecret = "invalid admin secret"

// AdminGate checks the static administrative secret. It is a separate
// credential from bearer tokens and never sees them.
type AdminGate struct {
	secret []byte
}

func NewAdminGate(secret string) AdminGate {
	return AdminGate{secret: []byte(secret)}
}

// Check returns Forbidden unless secret matches exactly.
func (g AdminGate) Check(secret string) error {
	if len(g.secret) == 0 || subtle.ConstantTimeCompare([]byte(secret), g.secret) != 1 {
		return apperr.Forbidden(msgBadSecret)
	}
	return nil
}
