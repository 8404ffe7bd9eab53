// Package auth verifies the administrative API token. The environment stores
// an argon2id hash of the token rather than the token itself, so a leaked
// configuration dump does not grant registry access.
package auth

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
	ErrInvalidTokenHash        = errors.New("auth: invalid token hash format")
	ErrIncompatibleHashVersion = errors.New("auth: incompatible token hash version")
	ErrTokenMismatch           = errors.New("auth: token mismatch")
)

// Argon2idParams tunes the key derivation.
type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams are sized for an interactive admin API check.
var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// CreateTokenHash derives a storable hash for token in the standard
// $argon2id$v=19$m=...,t=...,p=...$salt$hash encoding.
func CreateTokenHash(token string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(token), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// VerifyToken checks a presented token against a stored hash in constant
// time. It returns ErrTokenMismatch when the token does not match.
func VerifyToken(storedHash, token string) error {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidTokenHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrInvalidTokenHash
	}
	if version != argon2.Version {
		return ErrIncompatibleHashVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return ErrInvalidTokenHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidTokenHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrInvalidTokenHash
	}

	derived := argon2.IDKey([]byte(token), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(expected)))
	if subtle.ConstantTimeCompare(expected, derived) == 1 {
		return nil
	}
	return ErrTokenMismatch
}
