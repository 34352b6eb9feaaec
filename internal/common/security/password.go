package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost keeps a single verification in the tens of milliseconds.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, falling back to DefaultBcryptCost
// when cost is outside the range bcrypt supports.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash salts and hashes plaintext. The result embeds the salt and cost.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	return string(bytes), err
}

// Verify reports whether plaintext matches storedHash. A malformed hash never matches.
// bcrypt ignores input past MaxPasswordBytes, so longer plaintexts are rejected outright.
func (h *PasswordHasher) Verify(plaintext, storedHash string) bool {
	if len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
