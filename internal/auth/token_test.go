package auth

import (
	"errors"
	"strings"
	"testing"
)

// testParams keeps derivation cheap enough for the test suite.
var testParams = Argon2idParams{
	Memory:      16 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestCreateTokenHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := CreateTokenHash("super-secret-token", testParams)
	if err != nil {
		t.Fatalf("CreateTokenHash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Fatalf("hash %q does not use the argon2id encoding", hash)
	}

	if err := VerifyToken(hash, "super-secret-token"); err != nil {
		t.Fatalf("VerifyToken rejected the original token: %v", err)
	}
	if err := VerifyToken(hash, "wrong-token"); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("VerifyToken(wrong token) = %v, want ErrTokenMismatch", err)
	}
}

func TestCreateTokenHashIsSalted(t *testing.T) {
	t.Parallel()

	first, err := CreateTokenHash("same-token", testParams)
	if err != nil {
		t.Fatalf("CreateTokenHash returned error: %v", err)
	}
	second, err := CreateTokenHash("same-token", testParams)
	if err != nil {
		t.Fatalf("CreateTokenHash returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same token are identical")
	}
}

func TestVerifyTokenRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want error
	}{
		{name: "empty", hash: "", want: ErrInvalidTokenHash},
		{name: "plain text", hash: "not-a-hash", want: ErrInvalidTokenHash},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=16,t=2,p=1$c2FsdA$aGFzaA", want: ErrInvalidTokenHash},
		{name: "missing segments", hash: "$argon2id$v=19$m=16,t=2,p=1$c2FsdA", want: ErrInvalidTokenHash},
		{name: "unsupported version", hash: "$argon2id$v=18$m=16,t=2,p=1$c2FsdA$aGFzaA", want: ErrIncompatibleHashVersion},
		{name: "bad parameters", hash: "$argon2id$v=19$m=x,t=2,p=1$c2FsdA$aGFzaA", want: ErrInvalidTokenHash},
		{name: "bad salt encoding", hash: "$argon2id$v=19$m=16,t=2,p=1$!!!$aGFzaA", want: ErrInvalidTokenHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := VerifyToken(tt.hash, "token"); !errors.Is(err, tt.want) {
				t.Fatalf("VerifyToken(%q) = %v, want %v", tt.hash, err, tt.want)
			}
		})
	}
}
