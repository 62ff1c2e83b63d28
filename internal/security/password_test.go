package security

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword(strings.Repeat("a", MinPasswordLen)); err != nil {
		t.Fatalf("ValidatePassword at minimum length = %v, want nil", err)
	}
	err := ValidatePassword(strings.Repeat("a", MinPasswordLen-1))
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("ValidatePassword below minimum = %v, want ErrPasswordTooShort", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, errHash := HashPassword("correct-horse-battery")
	if errHash != nil {
		t.Fatalf("HashPassword: %v", errHash)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "correct-horse-battery") {
		t.Fatal("CheckPassword rejected the original password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}
