package session

import (
	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/pkg/security"
)

// CredentialVerifier decides whether credential unlocks user.
type CredentialVerifier interface {
	Verify(user model.User, credential string) bool
}

// AcceptAny accepts every credential. This is the demo behaviour: finding
// the email is enough to sign in.
type AcceptAny struct{}

func (AcceptAny) Verify(model.User, string) bool { return true }

// PasswordVerifier checks the credential against the user's stored hash.
// Users without a hash are rejected.
type PasswordVerifier struct {
	Hasher security.PasswordHasher
}

func (v PasswordVerifier) Verify(user model.User, credential string) bool {
	if user.PasswordHash == "" || v.Hasher == nil {
		return false
	}
	return v.Hasher.Compare(user.PasswordHash, credential) == nil
}
