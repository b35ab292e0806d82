package memory

import (
	"sort"
	"time"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *tx) CreateInvite(inv models.Invite) error {
	for _, existing := range t.s.invites {
		if existing.Code == inv.Code {
			return storage.ErrDuplicate
		}
	}
	stored := inv
	t.s.invites[inv.ID] = &stored
	return nil
}

func (t *tx) GetInviteByCode(code string) (*models.Invite, error) {
	for _, inv := range t.s.invites {
		if inv.Code == code {
			c := *inv
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (t *tx) GetInviteByID(inviteID string) (*models.Invite, error) {
	inv, ok := t.s.invites[inviteID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (t *tx) IncrementInviteUse(inviteID string) error {
	inv, ok := t.s.invites[inviteID]
	if !ok {
		return storage.ErrNotFound
	}
	inv.Uses++
	return nil
}

func (t *tx) DeleteInvite(inviteID string) error {
	if _, ok := t.s.invites[inviteID]; !ok {
		return storage.ErrNotFound
	}
	delete(t.s.invites, inviteID)
	return nil
}

func (t *tx) GetInvitesForSet(setID string, now time.Time) ([]models.Invite, error) {
	var out []models.Invite
	for _, inv := range t.s.invites {
		if inv.SetID != setID {
			continue
		}
		if inv.ExpiresAt != nil && !inv.ExpiresAt.After(now) {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
