package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !Verify("correct horse battery", hash) {
		t.Error("Verify should accept the original password")
	}
	if Verify("wrong password", hash) {
		t.Error("Verify should reject a wrong password")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")

	if a == b {
		t.Error("different tokens should hash differently")
	}
	if a != HashToken("token-a") {
		t.Error("token hashing must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("7-char passwords and below should fail")
	}
	if !ValidatePassword("longenough") {
		t.Error("8+ char passwords should pass")
	}
}
