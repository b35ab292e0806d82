package sqlite

import (
	"database/sql"
	"errors"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *txImpl) CreateMessage(m models.Message) error {
	var attachmentID sql.NullString
	if m.Attachment != nil {
		attachmentID = sql.NullString{String: m.Attachment.ID, Valid: true}
	}
	_, err := t.tx.Exec(
		`INSERT INTO messages (id, subset_id, author_id, content, send_time, attachment_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SubsetID, m.AuthorID, m.Content, m.SendTime, attachmentID,
	)
	return err
}

func (t *txImpl) scanMessage(scan func(dest ...any) error) (*models.Message, error) {
	var m models.Message
	var attachmentID sql.NullString
	if err := scan(&m.ID, &m.SubsetID, &m.AuthorID, &m.Content, &m.SendTime, &attachmentID); err != nil {
		return nil, err
	}
	if attachmentID.Valid {
		file, err := t.GetFile(attachmentID.String)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		m.Attachment = file
	}
	return &m, nil
}

func (t *txImpl) GetMessage(id string) (*models.Message, error) {
	row := t.tx.QueryRow(
		`SELECT id, subset_id, author_id, content, send_time, attachment_id FROM messages WHERE id = ?`,
		id,
	)
	m, err := t.scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return m, err
}

// GetMessagesForSubset returns messages newest-first, limited to limit rows,
// and restricted to strictly-older-than-before when before is supplied
// (spec §4.4 "List messages").
func (t *txImpl) GetMessagesForSubset(subsetID string, before *string, limit int) ([]models.Message, error) {
	var rows *sql.Rows
	var err error

	if before != nil {
		var beforeSendTime sql.NullTime
		err = t.tx.QueryRow(`SELECT send_time FROM messages WHERE id = ?`, *before).Scan(&beforeSendTime)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		rows, err = t.tx.Query(
			`SELECT id, subset_id, author_id, content, send_time, attachment_id FROM messages
			 WHERE subset_id = ? AND send_time < ?
			 ORDER BY send_time DESC LIMIT ?`,
			subsetID, beforeSendTime.Time, limit,
		)
	} else {
		rows, err = t.tx.Query(
			`SELECT id, subset_id, author_id, content, send_time, attachment_id FROM messages
			 WHERE subset_id = ?
			 ORDER BY send_time DESC LIMIT ?`,
			subsetID, limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		m, err := t.scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (t *txImpl) UpdateMessageContent(id, content string) error {
	res, err := t.tx.Exec(`UPDATE messages SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) DeleteMessage(id string) error {
	res, err := t.tx.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (t *txImpl) DeleteMessagesForSubset(subsetID string) error {
	_, err := t.tx.Exec(`DELETE FROM messages WHERE subset_id = ?`, subsetID)
	return err
}
