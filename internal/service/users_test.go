package service

import (
	"context"
	"testing"

	"equion/internal/storage"
)

func TestSignupLoginLogoutLoginIssuesFreshTokenEachTime(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	signup, err := app.users.Signup(ctx, "alice", "password1", "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if signup.Token == "" {
		t.Fatal("expected non-empty token from Signup")
	}

	firstLogin, err := app.users.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := app.users.Logout(ctx, firstLogin.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := app.users.ValidateToken(ctx, firstLogin.Token); err == nil {
		t.Fatal("expected validateToken to fail after logout")
	}

	secondLogin, err := app.users.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("second Login() error = %v", err)
	}
	if secondLogin.Token == firstLogin.Token {
		t.Fatal("expected a fresh token on the second login")
	}
	if secondLogin.UID != signup.UID {
		t.Fatalf("uid mismatch: got %q, want %q", secondLogin.UID, signup.UID)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	if _, err := app.users.Signup(ctx, "alice", "password1", "Alice", "a@example.com"); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}
	if _, err := app.users.Signup(ctx, "alice", "password2", "Alice2", "a2@example.com"); err == nil {
		t.Fatal("expected second signup with the same username to fail")
	}
}

func TestSignupBoundaryUsernameAndPasswordLength(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "username_exactly_3_accepted", username: "abc", password: "password1", wantErr: false},
		{name: "username_2_rejected", username: "ab", password: "password1", wantErr: true},
		{name: "password_exactly_6_accepted", username: "zyx", password: "123456", wantErr: false},
		{name: "password_5_rejected", username: "wvu", password: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			_, err := app.users.Signup(context.Background(), tt.username, tt.password, "Display", "e@example.com")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Signup(%q, %q) error = %v, wantErr %v", tt.username, tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestLoginDoesNotShortCircuitOnUnknownUsername(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	if _, err := app.users.Login(ctx, "nobody", "whatever1"); err == nil {
		t.Fatal("expected login for unknown username to fail")
	}
}

func TestUpdateUserFansOutToCallerSets(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	signup, err := app.users.Signup(ctx, "alice", "password1", "Alice", "a@example.com")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	setID, err := app.sets.CreateSet(ctx, signup.Token, "Alpha", nil)
	if err != nil {
		t.Fatalf("CreateSet() error = %v", err)
	}

	sender := &recordingSender{}
	app.fabric.Register("addr-1", sender)
	if err := app.store.WithTx(ctx, func(tx storage.Tx) error {
		return app.fabric.Subscribe(tx, signup.UID, setID, "addr-1")
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	newName := "Alice Updated"
	if err := app.users.UpdateUser(ctx, signup.Token, &newName, nil, nil); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	updated, err := app.users.GetUser(ctx, signup.UID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if updated.DisplayName != newName {
		t.Fatalf("DisplayName = %q, want %q", updated.DisplayName, newName)
	}
	if len(sender.received) != 1 {
		t.Fatalf("expected exactly one broadcast frame delivered to the subscriber, got %d", len(sender.received))
	}
}
