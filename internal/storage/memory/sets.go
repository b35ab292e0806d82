package memory

import (
	"sort"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *tx) CreateSet(s models.Set) error {
	stored := s
	stored.Subsets = nil
	stored.Members = nil
	stored.VoiceMembers = nil
	t.s.sets[s.ID] = &stored
	return nil
}

func (t *tx) GetSet(setID string) (*models.Set, error) {
	s, ok := t.s.sets[setID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (t *tx) GetSetsForUser(userID string) ([]models.Set, error) {
	var memberships []*models.Membership
	for _, m := range t.s.memberships {
		if m.UserID == userID {
			memberships = append(memberships, m)
		}
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].CreatedAt.Before(memberships[j].CreatedAt) })

	var out []models.Set
	for _, m := range memberships {
		if s, ok := t.s.sets[m.SetID]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (t *tx) RenameSet(setID, name string) error {
	s, ok := t.s.sets[setID]
	if !ok {
		return storage.ErrNotFound
	}
	s.Name = name
	return nil
}

func (t *tx) DeleteSet(setID string) error {
	if _, ok := t.s.sets[setID]; !ok {
		return storage.ErrNotFound
	}
	delete(t.s.sets, setID)
	return nil
}

func (t *tx) CreateSubset(s models.Subset) error {
	stored := s
	t.s.subsets[s.ID] = &stored
	return nil
}

func (t *tx) GetSubset(subsetID string) (*models.Subset, error) {
	s, ok := t.s.subsets[subsetID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (t *tx) GetSubsetsForSet(setID string) ([]models.Subset, error) {
	var out []models.Subset
	for _, s := range t.s.subsets {
		if s.SetID == setID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *tx) RenameSubset(subsetID, name string) error {
	s, ok := t.s.subsets[subsetID]
	if !ok {
		return storage.ErrNotFound
	}
	s.Name = name
	return nil
}

func (t *tx) DeleteSubset(subsetID string) error {
	if _, ok := t.s.subsets[subsetID]; !ok {
		return storage.ErrNotFound
	}
	delete(t.s.subsets, subsetID)
	return nil
}

func (t *tx) CreateMembership(m models.Membership) error {
	for _, existing := range t.s.memberships {
		if existing.UserID == m.UserID && existing.SetID == m.SetID {
			return storage.ErrDuplicate
		}
	}
	stored := m
	t.s.memberships[m.ID] = &stored
	return nil
}

func (t *tx) GetMembership(userID, setID string) (*models.Membership, error) {
	for _, m := range t.s.memberships {
		if m.UserID == userID && m.SetID == setID {
			c := *m
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (t *tx) DeleteMembership(userID, setID string) error {
	for id, m := range t.s.memberships {
		if m.UserID == userID && m.SetID == setID {
			delete(t.s.memberships, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (t *tx) GetMembersForSet(setID string) ([]models.Member, error) {
	var out []models.Member
	for _, m := range t.s.memberships {
		if m.SetID != setID {
			continue
		}
		u, ok := t.s.users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, models.Member{
			UID:         u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Image:       u.Image,
			Admin:       m.Admin,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (t *tx) GetSetMemberUserIDs(setID string) ([]string, error) {
	var out []string
	for _, m := range t.s.memberships {
		if m.SetID == setID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

func (t *tx) GetSetIDsForUser(userID string) ([]string, error) {
	var out []string
	for _, m := range t.s.memberships {
		if m.UserID == userID {
			out = append(out, m.SetID)
		}
	}
	return out, nil
}
