package security

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var ErrHashingFailed = errors.New("password hashing failed")

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// specialChars is the fixed set the signup screen advertises.
const specialChars = "@$!%*?&"

// PolicyResult reports each password requirement individually so the
// signup form can show which one failed.
type PolicyResult struct {
	HasUpper     bool
	HasLower     bool
	HasNumber    bool
	HasSpecial   bool
	IsLongEnough bool
}

func (r PolicyResult) IsValid() bool {
	return r.HasUpper && r.HasLower && r.HasNumber && r.HasSpecial && r.IsLongEnough
}

// CheckPolicy evaluates all five password requirements.
func CheckPolicy(password string) PolicyResult {
	result := PolicyResult{IsLongEnough: len(password) >= MinPasswordLen}
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			result.HasUpper = true
		case unicode.IsLower(ch):
			result.HasLower = true
		case unicode.IsDigit(ch):
			result.HasNumber = true
		case strings.ContainsRune(specialChars, ch):
			result.HasSpecial = true
		}
	}
	return result
}

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
