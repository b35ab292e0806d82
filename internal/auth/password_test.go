package auth

import "testing"

func TestHashAndVerifyPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !VerifyPassword("correct horse", hash) {
		t.Fatal("expected VerifyPassword to accept the original password")
	}
	if VerifyPassword("wrong password", hash) {
		t.Fatal("expected VerifyPassword to reject a wrong password")
	}
}

func TestHashPasswordProducesDistinctSaltsPerCall(t *testing.T) {
	first, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword() first error = %v", err)
	}
	second, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword() second error = %v", err)
	}
	if first == second {
		t.Fatal("expected two hashes of the same password to differ by salt")
	}
}

func TestVerifyPasswordHandlesMalformedEncodedValue(t *testing.T) {
	if VerifyPassword("anything", "not-a-valid-encoding") {
		t.Fatal("expected VerifyPassword to reject a malformed encoded hash")
	}
	if VerifyPassword("anything", "") {
		t.Fatal("expected VerifyPassword to reject an empty encoded hash")
	}
}
