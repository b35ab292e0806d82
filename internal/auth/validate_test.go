package auth

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "exactly_3_chars_accepted", username: "abc", wantErr: false},
		{name: "2_chars_rejected", username: "ab", wantErr: true},
		{name: "hyphen_and_underscore_accepted", username: "a-b_c", wantErr: false},
		{name: "space_rejected", username: "a b c", wantErr: true},
		{name: "unicode_rejected", username: "usér", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("ValidatePassword(6 chars) error = %v, want nil", err)
	}
	if err := ValidatePassword("12345"); err == nil {
		t.Fatal("expected ValidatePassword(5 chars) to fail")
	}
}

func TestValidateDisplayNameRejectsWhitespaceOnly(t *testing.T) {
	if err := ValidateDisplayName("   "); err == nil {
		t.Fatal("expected whitespace-only display name to be rejected")
	}
	if err := ValidateDisplayName("Alice"); err != nil {
		t.Fatalf("ValidateDisplayName(\"Alice\") error = %v, want nil", err)
	}
}
