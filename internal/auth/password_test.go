package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt": BcryptHasher{Cost: bcrypt.MinCost},
		"argon2id": Argon2Hasher{
			Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32,
		},
	}
}

func TestHasherRoundTrip(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("secreto1")
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if hash == "secreto1" {
				t.Fatal("hash equals the password")
			}

			ok, err := h.Verify(hash, "secreto1")
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if !ok {
				t.Error("expected matching password to verify")
			}

			ok, err = h.Verify(hash, "otra-clave")
			if err != nil {
				t.Fatalf("verify mismatch: %v", err)
			}
			if ok {
				t.Error("expected wrong password to fail")
			}
		})
	}
}

func TestHasherSalted(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			a, _ := h.Hash("secreto1")
			b, _ := h.Hash("secreto1")
			if a == b {
				t.Error("expected distinct hashes for the same password")
			}
		})
	}
}

func TestArgon2HashFormat(t *testing.T) {
	h := Argon2Hasher{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
	hash, err := h.Hash("secreto1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Errorf("hash = %q", hash)
	}
}

func TestVerifyMalformed(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			_, err := h.Verify("not-a-hash", "secreto1")
			if !errors.Is(err, ErrMalformedHash) {
				t.Errorf("err = %v, want ErrMalformedHash", err)
			}
		})
	}
}

func TestNewHasher(t *testing.T) {
	if _, err := NewHasher("bcrypt"); err != nil {
		t.Errorf("bcrypt: %v", err)
	}
	if _, err := NewHasher("argon2id"); err != nil {
		t.Errorf("argon2id: %v", err)
	}
	if _, err := NewHasher("md5"); err == nil {
		t.Error("expected error for unknown hasher")
	}
}
