package auth

import "crypto/subtle"

// StaticKeyAuthorizer accepts exactly one shared secret.
type StaticKeyAuthorizer struct {
	secret []byte
}

func NewStaticKeyAuthorizer(secret string) *StaticKeyAuthorizer {
	return &StaticKeyAuthorizer{secret: []byte(secret)}
}

func (a *StaticKeyAuthorizer) Validate(credential string) bool {
	if len(a.secret) == 0 || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), a.secret) == 1
}
