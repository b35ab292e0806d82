// Package service implements the transactional business logic sitting
// between the command dispatcher and the storage abstraction (spec §4.2,
// §4.3, §4.4): one function per dispatcher command, each opening exactly one
// storage.Store transaction and returning either a result or an *apperr.E.
package service

import (
	"context"
	"sort"
	"strings"

	"equion/internal/apperr"
	"equion/internal/auth"
	"equion/internal/fabric"
	"equion/internal/models"
	"equion/internal/storage"
	"equion/internal/voice"
)

// Users is the user/session half of the entity services (spec §4.2).
type Users struct {
	Store      storage.Store
	Fabric     *fabric.Fabric
	Voice      *voice.Registry
	TokenBytes int
}

// NewUsers constructs a Users service. tokenBytes configures the length of
// freshly issued session tokens (config.AuthConfig.TokenBytes); 0 uses
// auth.DefaultTokenBytes.
func NewUsers(store storage.Store, f *fabric.Fabric, v *voice.Registry, tokenBytes int) *Users {
	return &Users{Store: store, Fabric: f, Voice: v, TokenBytes: tokenBytes}
}

// SignupResult is the signup/login response shape (spec §4.1 table).
type SignupResult struct {
	UID   string
	Token string
}

// Signup validates input, creates a user, and issues a fresh session token
// (spec §4.2 "Signup").
func (u *Users) Signup(ctx context.Context, username, password, displayName, email string) (*SignupResult, error) {
	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := auth.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := storage.GenerateID("usr")
	if err != nil {
		return nil, err
	}
	token, err := auth.NewToken(u.TokenBytes)
	if err != nil {
		return nil, err
	}

	var result *SignupResult
	err = u.Store.WithTx(ctx, func(tx storage.Tx) error {
		exists, err := tx.UsernameExists(username)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrUsernameExists
		}

		tok := token
		user := models.User{
			ID:           id,
			Username:     username,
			PasswordHash: hash,
			DisplayName:  displayName,
			Email:        email,
			Token:        &tok,
		}
		if err := tx.CreateUser(user); err != nil {
			return err
		}

		result = &SignupResult{UID: id, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Login verifies credentials and rotates the user's session token (spec
// §4.2 "Login"). Verification always runs even when the username is
// unknown, so the lookup miss does not short-circuit the hashing cost.
func (u *Users) Login(ctx context.Context, username, password string) (*SignupResult, error) {
	var result *SignupResult
	err := u.Store.WithTx(ctx, func(tx storage.Tx) error {
		user, lookupErr := tx.GetUserByUsername(username)

		hash := ""
		if lookupErr == nil {
			hash = user.PasswordHash
		}
		ok := auth.VerifyPassword(password, hash)

		if lookupErr != nil || !ok {
			return apperr.ErrInvalidUsernamePassword
		}

		token, err := auth.NewToken(u.TokenBytes)
		if err != nil {
			return err
		}
		if err := tx.SetUserToken(user.ID, token); err != nil {
			return err
		}

		result = &SignupResult{UID: user.ID, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout clears the token row matching token (spec §4.2 "Logout").
func (u *Users) Logout(ctx context.Context, token string) error {
	return u.Store.WithTx(ctx, func(tx storage.Tx) error {
		affected, err := tx.ClearToken(token)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.ErrInvalidToken
		}
		return nil
	})
}

// ValidateToken resolves token to its owning uid (spec §4.2 "Token
// validation").
func (u *Users) ValidateToken(ctx context.Context, token string) (string, error) {
	var uid string
	err := u.Store.WithTx(ctx, func(tx storage.Tx) error {
		user, err := tx.GetUserByToken(token)
		if err != nil {
			return apperr.ErrInvalidToken
		}
		uid = user.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return uid, nil
}

// ResolveToken is the shared "resolve token inside its own transaction"
// primitive (spec §4.2) used by every authenticated handler that already
// has an open tx.
func ResolveToken(tx storage.Tx, token string) (*models.User, error) {
	user, err := tx.GetUserByToken(token)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	return user, nil
}

// GetUser returns a single user's public projection, hydrated with the
// live online flag (spec §4.1 "user").
func (u *Users) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user *models.User
	err := u.Store.WithTx(ctx, func(tx storage.Tx) error {
		got, err := tx.GetUserByID(uid)
		if err != nil {
			return apperr.ErrUserNotFound
		}
		user = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Online = u.Voice.IsOnline(user.ID)
	return user, nil
}

// UpdateUser patches the caller's profile fields and fans out a v1/user
// update to every set the caller belongs to (spec §4.4 fabric note).
func (u *Users) UpdateUser(ctx context.Context, token string, displayName, email, bio *string) error {
	var uid string
	var setIDs []string
	var user *models.User

	err := u.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if displayName != nil {
			if err := auth.ValidateDisplayName(*displayName); err != nil {
				return err
			}
		}
		if err := tx.UpdateUserProfile(caller.ID, displayName, email, bio); err != nil {
			return err
		}
		updated, err := tx.GetUserByID(caller.ID)
		if err != nil {
			return err
		}
		ids, err := tx.GetSetIDsForUser(caller.ID)
		if err != nil {
			return err
		}
		uid = caller.ID
		setIDs = ids
		user = updated
		return nil
	})
	if err != nil {
		return err
	}

	user.Online = u.Voice.IsOnline(uid)
	for _, setID := range setIDs {
		u.Fabric.Broadcast(setID, fabric.UserEvent(setID, *user, false))
	}
	return nil
}

// HydrateMembers sorts a set's members by display name and tags each with
// a live online flag (spec §4.3 "Read set(s)").
func (u *Users) HydrateMembers(members []models.Member) []models.Member {
	out := make([]models.Member, len(members))
	copy(out, members)
	for i := range out {
		out[i].Online = u.Voice.IsOnline(out[i].UID)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out
}
