package memory

import (
	"equion/internal/models"
	"equion/internal/storage"
)

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (t *tx) CreateUser(u models.User) error {
	if _, exists := t.s.usersByName[u.Username]; exists {
		return storage.ErrDuplicate
	}
	stored := u
	t.s.users[u.ID] = &stored
	t.s.usersByName[u.Username] = u.ID
	if u.Token != nil {
		t.s.tokens[*u.Token] = u.ID
	}
	return nil
}

func (t *tx) UsernameExists(username string) (bool, error) {
	_, ok := t.s.usersByName[username]
	return ok, nil
}

func (t *tx) GetUserByUsername(username string) (*models.User, error) {
	id, ok := t.s.usersByName[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneUser(t.s.users[id]), nil
}

func (t *tx) GetUserByID(id string) (*models.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneUser(u), nil
}

func (t *tx) GetUserByToken(token string) (*models.User, error) {
	id, ok := t.s.tokens[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneUser(t.s.users[id]), nil
}

func (t *tx) SetUserToken(userID, token string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if u.Token != nil {
		delete(t.s.tokens, *u.Token)
	}
	u.Token = &token
	t.s.tokens[token] = userID
	return nil
}

func (t *tx) ClearToken(token string) (int64, error) {
	id, ok := t.s.tokens[token]
	if !ok {
		return 0, nil
	}
	delete(t.s.tokens, token)
	if u, ok := t.s.users[id]; ok {
		u.Token = nil
	}
	return 1, nil
}

func (t *tx) UpdateUserProfile(userID string, displayName, email, bio *string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if email != nil {
		u.Email = *email
	}
	if bio != nil {
		u.Bio = bio
	}
	return nil
}

func (t *tx) UpdateUserImage(userID, fileID string) error {
	u, ok := t.s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.Image = &fileID
	return nil
}
