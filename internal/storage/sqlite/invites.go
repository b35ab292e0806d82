package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *txImpl) CreateInvite(inv models.Invite) error {
	_, err := t.tx.Exec(
		`INSERT INTO invites (id, set_id, code, created_at, expires_at, uses) VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.SetID, inv.Code, inv.CreatedAt, ptrToNullTime(inv.ExpiresAt), inv.Uses,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrDuplicate
		}
		return err
	}
	return nil
}

func (t *txImpl) GetInviteByCode(code string) (*models.Invite, error) {
	var inv models.Invite
	var expiresAt sql.NullTime
	err := t.tx.QueryRow(
		`SELECT id, set_id, code, created_at, expires_at, uses FROM invites WHERE code = ?`,
		code,
	).Scan(&inv.ID, &inv.SetID, &inv.Code, &inv.CreatedAt, &expiresAt, &inv.Uses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.ExpiresAt = nullTimeToPtr(expiresAt)
	return &inv, nil
}

func (t *txImpl) GetInviteByID(inviteID string) (*models.Invite, error) {
	var inv models.Invite
	var expiresAt sql.NullTime
	err := t.tx.QueryRow(
		`SELECT id, set_id, code, created_at, expires_at, uses FROM invites WHERE id = ?`,
		inviteID,
	).Scan(&inv.ID, &inv.SetID, &inv.Code, &inv.CreatedAt, &expiresAt, &inv.Uses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.ExpiresAt = nullTimeToPtr(expiresAt)
	return &inv, nil
}

func (t *txImpl) IncrementInviteUse(inviteID string) error {
	res, err := t.tx.Exec(`UPDATE invites SET uses = uses + 1 WHERE id = ?`, inviteID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) DeleteInvite(inviteID string) error {
	res, err := t.tx.Exec(`DELETE FROM invites WHERE id = ?`, inviteID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) GetInvitesForSet(setID string, now time.Time) ([]models.Invite, error) {
	rows, err := t.tx.Query(
		`SELECT id, set_id, code, created_at, expires_at, uses FROM invites
		 WHERE set_id = ? AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY created_at`,
		setID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Invite
	for rows.Next() {
		var inv models.Invite
		var expiresAt sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.SetID, &inv.Code, &inv.CreatedAt, &expiresAt, &inv.Uses); err != nil {
			return nil, err
		}
		inv.ExpiresAt = nullTimeToPtr(expiresAt)
		out = append(out, inv)
	}
	return out, rows.Err()
}
