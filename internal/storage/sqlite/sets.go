package sqlite

import (
	"database/sql"
	"errors"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *txImpl) CreateSet(s models.Set) error {
	_, err := t.tx.Exec(
		`INSERT INTO sets (id, name, icon, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.Icon, s.CreatedAt,
	)
	return err
}

func (t *txImpl) GetSet(setID string) (*models.Set, error) {
	var s models.Set
	err := t.tx.QueryRow(`SELECT id, name, icon, created_at FROM sets WHERE id = ?`, setID).
		Scan(&s.ID, &s.Name, &s.Icon, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *txImpl) GetSetsForUser(userID string) ([]models.Set, error) {
	rows, err := t.tx.Query(
		`SELECT sets.id, sets.name, sets.icon, sets.created_at
		 FROM sets JOIN memberships ON memberships.set_id = sets.id
		 WHERE memberships.user_id = ?
		 ORDER BY sets.created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *txImpl) RenameSet(setID, name string) error {
	res, err := t.tx.Exec(`UPDATE sets SET name = ? WHERE id = ?`, name, setID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) DeleteSet(setID string) error {
	res, err := t.tx.Exec(`DELETE FROM sets WHERE id = ?`, setID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) CreateSubset(s models.Subset) error {
	_, err := t.tx.Exec(
		`INSERT INTO subsets (id, set_id, name, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.SetID, s.Name, s.CreatedAt,
	)
	return err
}

func (t *txImpl) GetSubset(subsetID string) (*models.Subset, error) {
	var s models.Subset
	err := t.tx.QueryRow(`SELECT id, set_id, name, created_at FROM subsets WHERE id = ?`, subsetID).
		Scan(&s.ID, &s.SetID, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *txImpl) GetSubsetsForSet(setID string) ([]models.Subset, error) {
	rows, err := t.tx.Query(
		`SELECT id, set_id, name, created_at FROM subsets WHERE set_id = ? ORDER BY created_at`,
		setID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Subset
	for rows.Next() {
		var s models.Subset
		if err := rows.Scan(&s.ID, &s.SetID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *txImpl) RenameSubset(subsetID, name string) error {
	res, err := t.tx.Exec(`UPDATE subsets SET name = ? WHERE id = ?`, name, subsetID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) DeleteSubset(subsetID string) error {
	res, err := t.tx.Exec(`DELETE FROM subsets WHERE id = ?`, subsetID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) CreateMembership(m models.Membership) error {
	_, err := t.tx.Exec(
		`INSERT INTO memberships (id, user_id, set_id, admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.SetID, m.Admin, m.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrDuplicate
		}
		return err
	}
	return nil
}

func (t *txImpl) GetMembership(userID, setID string) (*models.Membership, error) {
	var m models.Membership
	err := t.tx.QueryRow(
		`SELECT id, user_id, set_id, admin, created_at FROM memberships WHERE user_id = ? AND set_id = ?`,
		userID, setID,
	).Scan(&m.ID, &m.UserID, &m.SetID, &m.Admin, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *txImpl) DeleteMembership(userID, setID string) error {
	res, err := t.tx.Exec(`DELETE FROM memberships WHERE user_id = ? AND set_id = ?`, userID, setID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) GetMembersForSet(setID string) ([]models.Member, error) {
	rows, err := t.tx.Query(
		`SELECT users.id, users.username, users.display_name, users.image, memberships.admin
		 FROM memberships JOIN users ON users.id = memberships.user_id
		 WHERE memberships.set_id = ?
		 ORDER BY users.display_name`,
		setID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		var image sql.NullString
		if err := rows.Scan(&m.UID, &m.Username, &m.DisplayName, &image, &m.Admin); err != nil {
			return nil, err
		}
		m.Image = nullStringToPtr(image)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (t *txImpl) GetSetMemberUserIDs(setID string) ([]string, error) {
	rows, err := t.tx.Query(`SELECT user_id FROM memberships WHERE set_id = ?`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (t *txImpl) GetSetIDsForUser(userID string) ([]string, error) {
	rows, err := t.tx.Query(`SELECT set_id FROM memberships WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
