package service

import (
	"context"
	"time"

	"equion/internal/apperr"
	"equion/internal/fabric"
	"equion/internal/models"
	"equion/internal/storage"
	"equion/internal/voice"
)

// Sets is the set/subset/membership/invite service (spec §4.3).
type Sets struct {
	Store  storage.Store
	Fabric *fabric.Fabric
	Voice  *voice.Registry
	Users  *Users
}

// NewSets constructs a Sets service.
func NewSets(store storage.Store, f *fabric.Fabric, v *voice.Registry, u *Users) *Sets {
	return &Sets{Store: store, Fabric: f, Voice: v, Users: u}
}

func (s *Sets) hydrate(set *models.Set, subsets []models.Subset, members []models.Member) {
	set.Subsets = subsets
	set.Members = s.Users.HydrateMembers(members)
	set.VoiceMembers = s.Voice.ChannelMembers(set.ID)
}

// GetSets returns every set the token's owner belongs to (spec §4.1
// "sets"), each hydrated per spec §4.3 "Read set(s)".
func (s *Sets) GetSets(ctx context.Context, token string) ([]models.Set, error) {
	var out []models.Set
	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		sets, err := tx.GetSetsForUser(caller.ID)
		if err != nil {
			return err
		}
		for i := range sets {
			subsets, err := tx.GetSubsetsForSet(sets[i].ID)
			if err != nil {
				return err
			}
			members, err := tx.GetMembersForSet(sets[i].ID)
			if err != nil {
				return err
			}
			s.hydrate(&sets[i], subsets, members)
		}
		out = sets
		return nil
	})
	return out, err
}

// GetSet returns a single set, requiring the caller to be a member (spec
// §4.1 "set").
func (s *Sets) GetSet(ctx context.Context, token, setID string) (*models.Set, error) {
	var out *models.Set
	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if _, err := tx.GetMembership(caller.ID, setID); err != nil {
			return apperr.ErrNotAMember
		}
		set, err := tx.GetSet(setID)
		if err != nil {
			return apperr.ErrSetNotFound
		}
		subsets, err := tx.GetSubsetsForSet(setID)
		if err != nil {
			return err
		}
		members, err := tx.GetMembersForSet(setID)
		if err != nil {
			return err
		}
		s.hydrate(set, subsets, members)
		out = set
		return nil
	})
	return out, err
}

// CreateSet creates a set, its creator's admin membership, and a default
// "General" subset atomically (spec §4.3 "Create set").
func (s *Sets) CreateSet(ctx context.Context, token, name string, icon *string) (string, error) {
	setID, err := storage.GenerateID("set")
	if err != nil {
		return "", err
	}
	membershipID, err := storage.GenerateID("mem")
	if err != nil {
		return "", err
	}
	subsetID, err := storage.GenerateID("sbs")
	if err != nil {
		return "", err
	}

	resolvedIcon := defaultIcon(name)
	if icon != nil && *icon != "" {
		resolvedIcon = *icon
	}

	err = s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}

		if err := tx.CreateSet(models.Set{ID: setID, Name: name, Icon: resolvedIcon, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.CreateMembership(models.Membership{ID: membershipID, UserID: caller.ID, SetID: setID, Admin: true, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.CreateSubset(models.Subset{ID: subsetID, SetID: setID, Name: "General", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return setID, nil
}

func requireAdmin(tx storage.Tx, userID, setID string) error {
	m, err := tx.GetMembership(userID, setID)
	if err != nil {
		return apperr.ErrNotAMember
	}
	if !m.Admin {
		return apperr.ErrNotAnAdmin
	}
	return nil
}

// CreateSubset requires the caller to be an admin of set, then broadcasts
// a v1/subset creation event (spec §4.3 "Create subset").
func (s *Sets) CreateSubset(ctx context.Context, token, setID, name string) (string, error) {
	id, err := storage.GenerateID("sbs")
	if err != nil {
		return "", err
	}

	err = s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if err := requireAdmin(tx, caller.ID, setID); err != nil {
			return err
		}
		return tx.CreateSubset(models.Subset{ID: id, SetID: setID, Name: name, CreatedAt: time.Now()})
	})
	if err != nil {
		return "", err
	}

	s.Fabric.Broadcast(setID, fabric.SubsetEvent(setID, models.Subset{ID: id, Name: name}, false))
	return id, nil
}

// UpdateSubset renames or deletes a subset, admin-only (spec §4.3 "Update
// subset"). Delete removes the subset's messages first, atomically.
func (s *Sets) UpdateSubset(ctx context.Context, token, subsetID string, name *string, delete bool) error {
	var setID string
	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		subset, err := tx.GetSubset(subsetID)
		if err != nil {
			return apperr.ErrSetNotFound
		}
		if err := requireAdmin(tx, caller.ID, subset.SetID); err != nil {
			return err
		}
		setID = subset.SetID

		if delete {
			if err := tx.DeleteMessagesForSubset(subsetID); err != nil {
				return err
			}
			return tx.DeleteSubset(subsetID)
		}
		if name != nil {
			return tx.RenameSubset(subsetID, *name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	resolvedName := ""
	if name != nil {
		resolvedName = *name
	}
	s.Fabric.Broadcast(setID, fabric.SubsetEvent(setID, models.Subset{ID: subsetID, Name: resolvedName}, delete))
	return nil
}

// UpdateSet renames or deletes a set, admin-only (spec §9 design note b:
// exposed parallel to updateSubset). Delete cascades invites, memberships,
// subsets, and their messages before the set itself (spec §3 invariant 2).
func (s *Sets) UpdateSet(ctx context.Context, token, setID string, name *string, delete bool) error {
	return s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if err := requireAdmin(tx, caller.ID, setID); err != nil {
			return err
		}

		if !delete {
			if name != nil {
				return tx.RenameSet(setID, *name)
			}
			return nil
		}

		// The zero time lists expired invites too, so none outlive the set.
		invites, err := tx.GetInvitesForSet(setID, time.Time{})
		if err != nil {
			return err
		}
		for _, inv := range invites {
			if err := tx.DeleteInvite(inv.ID); err != nil {
				return err
			}
		}

		subsets, err := tx.GetSubsetsForSet(setID)
		if err != nil {
			return err
		}
		for _, sub := range subsets {
			if err := tx.DeleteMessagesForSubset(sub.ID); err != nil {
				return err
			}
			if err := tx.DeleteSubset(sub.ID); err != nil {
				return err
			}
		}

		memberIDs, err := tx.GetSetMemberUserIDs(setID)
		if err != nil {
			return err
		}
		for _, uid := range memberIDs {
			if err := tx.DeleteMembership(uid, setID); err != nil {
				return err
			}
		}

		return tx.DeleteSet(setID)
	})
}

// JoinSet resolves an invite by code, creates a membership, and increments
// the invite's use counter (spec §4.3 "Join set via invite code"). Per
// spec §9 design note (a), the "set" parameter here is the invite code.
func (s *Sets) JoinSet(ctx context.Context, token, inviteCode string) (string, error) {
	var setID string
	var joinedUser models.User

	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}

		inv, err := tx.GetInviteByCode(inviteCode)
		if err != nil {
			return apperr.ErrInviteNotFound
		}
		if inv.ExpiresAt != nil && !inv.ExpiresAt.After(time.Now()) {
			return apperr.ErrInviteExpired
		}

		if _, err := tx.GetMembership(caller.ID, inv.SetID); err == nil {
			return apperr.ErrAlreadyMember
		}

		membershipID, err := storage.GenerateID("mem")
		if err != nil {
			return err
		}
		if err := tx.CreateMembership(models.Membership{ID: membershipID, UserID: caller.ID, SetID: inv.SetID, Admin: false, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.IncrementInviteUse(inv.ID); err != nil {
			return err
		}

		setID = inv.SetID
		joinedUser = *caller
		return nil
	})
	if err != nil {
		return "", err
	}

	joinedUser.Online = s.Voice.IsOnline(joinedUser.ID)
	s.Fabric.Broadcast(setID, fabric.UserEvent(setID, joinedUser, false))
	return setID, nil
}

// LeaveSet removes the caller's membership and broadcasts the departure
// (spec §4.3 "Leave set").
func (s *Sets) LeaveSet(ctx context.Context, token, setID string) error {
	var leavingUser models.User

	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if _, err := tx.GetMembership(caller.ID, setID); err != nil {
			return apperr.ErrNotAMember
		}
		if err := tx.DeleteMembership(caller.ID, setID); err != nil {
			return err
		}
		leavingUser = *caller
		return nil
	})
	if err != nil {
		return err
	}

	s.Fabric.Broadcast(setID, fabric.UserEvent(setID, leavingUser, true))
	return nil
}

// CreateInvite generates an 8-character code, admin-only (spec §4.3
// "Create invite"). durationMinutes, if non-nil, sets the invite's expiry.
func (s *Sets) CreateInvite(ctx context.Context, token, setID string, durationMinutes *int) (string, error) {
	code, err := storage.GenerateInviteCode()
	if err != nil {
		return "", err
	}
	id, err := storage.GenerateID("inv")
	if err != nil {
		return "", err
	}

	err = s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if err := requireAdmin(tx, caller.ID, setID); err != nil {
			return err
		}

		var expiresAt *time.Time
		if durationMinutes != nil {
			t := time.Now().Add(time.Duration(*durationMinutes) * time.Minute)
			expiresAt = &t
		}

		return tx.CreateInvite(models.Invite{ID: id, SetID: setID, Code: code, CreatedAt: time.Now(), ExpiresAt: expiresAt})
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// RevokeInvite deletes an invite, admin-only against the invite's own set
// (spec §4.3 "Revoke invite").
func (s *Sets) RevokeInvite(ctx context.Context, token, inviteID string) error {
	return s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		inv, err := tx.GetInviteByID(inviteID)
		if err != nil {
			return apperr.ErrInviteNotFound
		}
		if err := requireAdmin(tx, caller.ID, inv.SetID); err != nil {
			return err
		}
		return tx.DeleteInvite(inviteID)
	})
}

// GetInvites lists a set's non-expired invites, member-only (spec §4.3
// "Get invites for a set").
func (s *Sets) GetInvites(ctx context.Context, token, setID string) ([]models.Invite, error) {
	var out []models.Invite
	err := s.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		if _, err := tx.GetMembership(caller.ID, setID); err != nil {
			return apperr.ErrNotAMember
		}
		invites, err := tx.GetInvitesForSet(setID, time.Now())
		if err != nil {
			return err
		}
		out = invites
		return nil
	})
	return out, err
}
