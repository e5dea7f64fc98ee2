package security_test

import (
	"testing"

	"github.com/rsharma-dev/attendhub/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct-horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "correct-horse" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "correct-horse"); err != nil {
		t.Fatalf("check with the right password should pass: %v", err)
	}

	if err := security.CheckPassword(hash, "battery-staple"); err == nil {
		t.Fatalf("check with a different password should fail")
	}

	if err := security.CheckPassword(hash, "correct-horsE"); err == nil {
		t.Fatalf("check must be case sensitive")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := security.HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	second, err := security.HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if first == second {
		t.Fatalf("two hashes of the same input should differ")
	}
}
