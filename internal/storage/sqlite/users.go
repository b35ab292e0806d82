package sqlite

import (
	"database/sql"
	"errors"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *txImpl) CreateUser(u models.User) error {
	_, err := t.tx.Exec(
		`INSERT INTO users (id, username, password_hash, display_name, email, image, bio, token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.DisplayName, u.Email,
		ptrToNullString(u.Image), ptrToNullString(u.Bio), ptrToNullString(u.Token), u.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrDuplicate
		}
		return err
	}
	return nil
}

func (t *txImpl) UsernameExists(username string) (bool, error) {
	var count int
	err := t.tx.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *txImpl) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var image, bio, token sql.NullString

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Email, &image, &bio, &token, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Image = nullStringToPtr(image)
	u.Bio = nullStringToPtr(bio)
	u.Token = nullStringToPtr(token)
	return &u, nil
}

const userColumns = `id, username, password_hash, display_name, email, image, bio, token, created_at`

func (t *txImpl) GetUserByUsername(username string) (*models.User, error) {
	row := t.tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return t.scanUser(row)
}

func (t *txImpl) GetUserByID(id string) (*models.User, error) {
	row := t.tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return t.scanUser(row)
}

func (t *txImpl) GetUserByToken(token string) (*models.User, error) {
	row := t.tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE token = ?`, token)
	return t.scanUser(row)
}

func (t *txImpl) SetUserToken(userID, token string) error {
	res, err := t.tx.Exec(`UPDATE users SET token = ? WHERE id = ?`, token, userID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) ClearToken(token string) (int64, error) {
	res, err := t.tx.Exec(`UPDATE users SET token = NULL WHERE token = ?`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *txImpl) UpdateUserProfile(userID string, displayName, email, bio *string) error {
	if displayName != nil {
		if _, err := t.tx.Exec(`UPDATE users SET display_name = ? WHERE id = ?`, *displayName, userID); err != nil {
			return err
		}
	}
	if email != nil {
		if _, err := t.tx.Exec(`UPDATE users SET email = ? WHERE id = ?`, *email, userID); err != nil {
			return err
		}
	}
	if bio != nil {
		if _, err := t.tx.Exec(`UPDATE users SET bio = ? WHERE id = ?`, *bio, userID); err != nil {
			return err
		}
	}
	return nil
}

func (t *txImpl) UpdateUserImage(userID, fileID string) error {
	res, err := t.tx.Exec(`UPDATE users SET image = ? WHERE id = ?`, fileID, userID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
