package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if err := VerifyPassword(hash, "secret1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password verified")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestLongPasswordsTruncateConsistently(t *testing.T) {
	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// bcrypt only considers the first 72 bytes, so these must agree
	if err := VerifyPassword(hash, strings.Repeat("a", 72)); err != nil {
		t.Fatalf("verify truncated equivalent: %v", err)
	}
	if err := VerifyPassword(hash, long); err != nil {
		t.Fatalf("verify original: %v", err)
	}
	if err := VerifyPassword(hash, strings.Repeat("a", 71)); err == nil {
		t.Fatal("shorter password verified")
	}
}
