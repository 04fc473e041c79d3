package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !h.Compare(hash, "s3cret") {
		t.Error("Compare() with correct password = false, want true")
	}
	if h.Compare(hash, "wrong") {
		t.Error("Compare() with wrong password = true, want false")
	}
}

func TestPasswordHasher_SamePasswordProducesDifferentHashes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Error("expected salted hashes to differ")
	}
}

func TestNewPasswordHasher_InvalidCostFallsBackToDefault(t *testing.T) {
	h := NewPasswordHasher(0)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestPasswordHasher_TooLongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 100))
	if err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
	if !isPasswordTooLong(err) {
		t.Errorf("isPasswordTooLong(%v) = false, want true", err)
	}
}
