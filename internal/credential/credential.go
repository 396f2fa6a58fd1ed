// Package credential isolates how submitted account credentials are turned
// into the opaque material that gets persisted. Whether that material is a
// bcrypt hash or the raw secret is a single injectable decision here, not
// something bind-request code hard-codes.
package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptySecret is returned when the submitted credential is empty.
var ErrEmptySecret = errors.New("credential secret is empty")

// Material is the stored form of a credential. It is write-only from the
// core's perspective: nothing in this codebase ever converts it back.
type Material string

// Policy converts a submitted secret into storable Material.
type Policy interface {
	Seal(secret string) (Material, error)
}

// BcryptPolicy hashes secrets with bcrypt. This is the default.
type BcryptPolicy struct {
	// Cost of 0 means bcrypt.DefaultCost.
	Cost int
}

func (p BcryptPolicy) Seal(secret string) (Material, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return Material(hash), nil
}

// PlaintextPolicy stores the secret verbatim. Kept only for deployments that
// explicitly opt in with CREDENTIAL_STORAGE=plaintext; never the default.
type PlaintextPolicy struct{}

func (PlaintextPolicy) Seal(secret string) (Material, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	return Material(secret), nil
}

// FromEnv maps the CREDENTIAL_STORAGE setting to a Policy. Anything other
// than "plaintext" gets the hashing default.
func FromEnv(setting string) Policy {
	if setting == "plaintext" {
		return PlaintextPolicy{}
	}
	return BcryptPolicy{}
}
