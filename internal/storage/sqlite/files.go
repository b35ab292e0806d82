package sqlite

import (
	"database/sql"
	"errors"
	"mime"
	"path/filepath"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *txImpl) CreateFile(f models.File) error {
	_, err := t.tx.Exec(
		`INSERT INTO files (id, name, content, owner_id) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.Content, f.OwnerID,
	)
	return err
}

func (t *txImpl) GetFile(id string) (*models.File, error) {
	var f models.File
	err := t.tx.QueryRow(`SELECT id, name, content, owner_id FROM files WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Content, &f.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// The files table has no MIME column; derive it from the name again.
	f.MimeType = mime.TypeByExtension(filepath.Ext(f.Name))
	if f.MimeType == "" {
		f.MimeType = "application/octet-stream"
	}
	return &f, nil
}
