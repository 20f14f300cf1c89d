// Package passwords hashes and checks account passwords.
//
// Two schemes are supported. SHA256 is the unsalted hex digest found in
// users.db files written before bcrypt; Bcrypt is salted and is the default
// for new hashes. Compare accepts either format, so existing rows keep
// verifying when the configured scheme changes.
package passwords

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt = "bcrypt"
	SchemeSHA256 = "sha256"
)

// MaxLength is the longest password, in bytes, that bcrypt accepts.
const MaxLength = 72

type Hasher interface {
	Hash(password string) (string, error)
	Scheme() string
}

func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeBcrypt, "":
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	case SchemeSHA256:
		return SHA256{}, nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

type SHA256 struct{}

func (SHA256) Scheme() string { return SchemeSHA256 }

func (SHA256) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

type Bcrypt struct {
	Cost int
}

func (Bcrypt) Scheme() string { return SchemeBcrypt }

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches the stored hash.
func Compare(hash, password string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	candidate, _ := SHA256{}.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(candidate)) == 1
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
