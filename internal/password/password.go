package password

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted password length.
const MinLength = 8

var (
	// ErrTooShort rejects passwords below MinLength.
	ErrTooShort = errors.New("password: must be at least 8 characters")
	// ErrAllNumeric rejects passwords made of digits only.
	ErrAllNumeric = errors.New("password: must not be entirely numeric")
)

// Validate applies the account password policy.
func Validate(plain string) error {
	if len(plain) < MinLength {
		return ErrTooShort
	}
	numeric := true
	for _, r := range plain {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return ErrAllNumeric
	}
	return nil
}

// Hasher defines the password hashing contract.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed password hasher. Zero cost
// selects the bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash converts a plain password into its stored hash.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks a plain password against a stored hash.
func (h *BcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
