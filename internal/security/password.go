package security

import "golang.org/x/crypto/bcrypt"

const hashCost = bcrypt.DefaultCost

// HashPassword derives a bcrypt hash from a plaintext password. Callers hash
// only when a password is set or changed; stored hashes are never re-hashed.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash,
// returning bcrypt's mismatch error when it does not.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
