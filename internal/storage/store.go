// Package storage defines the transaction interface service code depends on
// (spec §4.7, §9 "Dual storage backends"): a set of named, typed operations
// — one per query the service layer needs — implemented once against a real
// relational database (internal/storage/sqlite) and once against an
// in-memory mock (internal/storage/memory) used by the test harness. Service
// code must name only Tx's methods, never a concrete backend type.
package storage

import (
	"context"
	"errors"
	"time"

	"equion/internal/models"
)

// ErrNotFound is returned by single-row lookups that found nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint would be violated.
var ErrDuplicate = errors.New("duplicate entry")

// Store opens transactions. Each service operation runs inside exactly one
// transaction (spec §4.2 "Every authenticated operation resolves the token
// inside its own transaction").
type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Tx is the set of named operations available within a transaction.
type Tx interface {
	// Users
	CreateUser(u models.User) error
	UsernameExists(username string) (bool, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByToken(token string) (*models.User, error)
	SetUserToken(userID, token string) error
	ClearToken(token string) (rowsAffected int64, err error)
	UpdateUserProfile(userID string, displayName, email, bio *string) error
	UpdateUserImage(userID, fileID string) error

	// Sets, subsets, memberships
	CreateSet(s models.Set) error
	GetSet(setID string) (*models.Set, error)
	GetSetsForUser(userID string) ([]models.Set, error)
	CreateSubset(s models.Subset) error
	GetSubset(subsetID string) (*models.Subset, error)
	GetSubsetsForSet(setID string) ([]models.Subset, error)
	RenameSubset(subsetID, name string) error
	DeleteSubset(subsetID string) error
	RenameSet(setID, name string) error
	DeleteSet(setID string) error

	CreateMembership(m models.Membership) error
	GetMembership(userID, setID string) (*models.Membership, error)
	DeleteMembership(userID, setID string) error
	GetMembersForSet(setID string) ([]models.Member, error)
	GetSetMemberUserIDs(setID string) ([]string, error)
	GetSetIDsForUser(userID string) ([]string, error)

	// Invites
	CreateInvite(inv models.Invite) error
	GetInviteByCode(code string) (*models.Invite, error)
	GetInviteByID(inviteID string) (*models.Invite, error)
	IncrementInviteUse(inviteID string) error
	DeleteInvite(inviteID string) error
	GetInvitesForSet(setID string, now time.Time) ([]models.Invite, error)

	// Messages
	CreateMessage(m models.Message) error
	GetMessage(id string) (*models.Message, error)
	GetMessagesForSubset(subsetID string, before *string, limit int) ([]models.Message, error)
	UpdateMessageContent(id, content string) error
	DeleteMessage(id string) error
	DeleteMessagesForSubset(subsetID string) error

	// Files
	CreateFile(f models.File) error
	GetFile(id string) (*models.File, error)
}
