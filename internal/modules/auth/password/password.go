package password

import "golang.org/x/crypto/bcrypt"

// bcrypt only looks at the first 72 bytes of input. Truncate explicitly on
// both paths so Hash and Verify always agree about longer passwords.
const maxPasswordBytes = 72

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt-backed hasher. Pass 0 for the default cost;
// tests use bcrypt.MinCost to stay fast.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed or corrupt
// digest is a verification failure, indistinguishable from a wrong password.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), truncate(plaintext)) == nil
}

func truncate(s string) []byte {
	b := []byte(s)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
