package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrHashFormat  = errors.New("malformed password hash")
	ErrHashVersion = errors.New("unsupported argon2 version")
)

// Argon2id parameters. Memory-hard and deliberately slow so that leaked
// hashes resist offline guessing.
const (
	hashMemory      uint32 = 64 * 1024
	hashIterations  uint32 = 3
	hashParallelism uint8  = 2
	saltLength             = 16
	keyLength       uint32 = 32
)

// HashPassword derives an Argon2id hash with a fresh random salt and
// returns it encoded in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64 salt>$<base64 key>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashIterations, hashMemory, hashParallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory,
		hashIterations,
		hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// VerifyPassword reports whether password matches the PHC-encoded hash.
// The derived key comparison is constant-time. Parameters are taken
// from the stored hash, so older records keep verifying after the
// defaults change.
func VerifyPassword(password, encoded string) (bool, error) {
	memory, iterations, parallelism, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeHash(encoded string) (memory, iterations uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		err = ErrHashFormat
		return
	}

	var version int
	if _, serr := fmt.Sscanf(parts[2], "v=%d", &version); serr != nil {
		err = ErrHashFormat
		return
	}
	if version != argon2.Version {
		err = ErrHashVersion
		return
	}

	if _, serr := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); serr != nil {
		err = ErrHashFormat
		return
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		err = ErrHashFormat
		return
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		err = ErrHashFormat
		return
	}
	return
}
