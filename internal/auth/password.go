// Package auth provides credential hashing and bearer token encoding.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher produces and verifies salted one-way password digests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher at bcrypt's default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// Hash derives a salted digest from a raw password. Each call salts
// independently, so two hashes of the same password differ.
func (h *PasswordHasher) Hash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether raw matches the stored digest. A mismatch or a
// malformed stored hash both report false; Verify never fails loudly on a
// comparison.
func (h *PasswordHasher) Verify(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}
