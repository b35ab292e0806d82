package service

import (
	"context"
	"encoding/base64"
	"mime"
	"path/filepath"
	"time"

	"equion/internal/apperr"
	"equion/internal/fabric"
	"equion/internal/models"
	"equion/internal/storage"
)

// defaultMessageLimit is spec §4.4's "default limit 25".
const defaultMessageLimit = 25

// Messages is the message/attachment service (spec §4.4).
type Messages struct {
	Store  storage.Store
	Fabric *fabric.Fabric
}

// NewMessages constructs a Messages service.
func NewMessages(store storage.Store, f *fabric.Fabric) *Messages {
	return &Messages{Store: store, Fabric: f}
}

// mimeFor derives a MIME type from a filename extension, for client hinting
// only (spec §4.4 "Attachments expose a MIME type derived from the filename
// extension").
func mimeFor(filename string) string {
	t := mime.TypeByExtension(filepath.Ext(filename))
	if t == "" {
		return "application/octet-stream"
	}
	return t
}

// List returns a subset's messages, newest-first, requiring the caller to
// be a member of the subset's set (spec §4.4 "List messages").
func (m *Messages) List(ctx context.Context, token, subsetID string, before *string, limit *int) ([]models.Message, error) {
	n := defaultMessageLimit
	if limit != nil && *limit > 0 {
		n = *limit
	}

	var out []models.Message
	err := m.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		subset, err := tx.GetSubset(subsetID)
		if err != nil {
			return apperr.ErrSetNotFound
		}
		if _, err := tx.GetMembership(caller.ID, subset.SetID); err != nil {
			return apperr.ErrNotAMember
		}

		msgs, err := tx.GetMessagesForSubset(subsetID, before, n)
		if err != nil {
			return err
		}
		out = msgs
		return nil
	})
	return out, err
}

// AttachmentInput is the optional attachment carried by sendMessage (spec
// §4.1 "?attachment.name, ?attachment.data").
type AttachmentInput struct {
	Name string
	Data string // base64-encoded bytes
}

// Send creates a message (and, if an attachment is present, the File it
// references) in one transaction, then broadcasts it (spec §4.4 "Send
// message").
func (m *Messages) Send(ctx context.Context, token, subsetID, content string, attachment *AttachmentInput) error {
	msgID, err := storage.GenerateID("msg")
	if err != nil {
		return err
	}

	var setID string
	var result models.Message

	err = m.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		subset, err := tx.GetSubset(subsetID)
		if err != nil {
			return apperr.ErrSetNotFound
		}
		if _, err := tx.GetMembership(caller.ID, subset.SetID); err != nil {
			return apperr.ErrNotAMember
		}

		var fileRef *models.File
		if attachment != nil {
			if attachment.Name == "" {
				return apperr.Missing("attachment.name")
			}
			if attachment.Data == "" {
				return apperr.Missing("attachment.data")
			}
			raw, decodeErr := base64.StdEncoding.DecodeString(attachment.Data)
			if decodeErr != nil {
				return apperr.Invalid("attachment.data")
			}

			fileID, err := storage.GenerateID("fil")
			if err != nil {
				return err
			}
			file := models.File{
				ID:       fileID,
				Name:     attachment.Name,
				Content:  raw,
				OwnerID:  caller.ID,
				MimeType: mimeFor(attachment.Name),
			}
			if err := tx.CreateFile(file); err != nil {
				return err
			}
			fileRef = &file
		}

		msg := models.Message{
			ID:         msgID,
			SubsetID:   subsetID,
			AuthorID:   caller.ID,
			Content:    sanitizeContent(content),
			SendTime:   time.Now(),
			Attachment: fileRef,
		}
		if err := tx.CreateMessage(msg); err != nil {
			return err
		}

		setID = subset.SetID
		result = msg
		return nil
	})
	if err != nil {
		return err
	}

	m.Fabric.Broadcast(setID, fabric.MessageEvent(setID, subsetID, result, false))
	return nil
}

// Update renames a message's content, author-only (spec §4.4 "Update/delete
// message": "Rename broadcasts the new content").
func (m *Messages) Update(ctx context.Context, token, messageID, content string) error {
	var setID, subsetID string
	var result models.Message

	err := m.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		msg, err := tx.GetMessage(messageID)
		if err != nil {
			return apperr.ErrMessageNotFound
		}
		if msg.AuthorID != caller.ID {
			return apperr.ErrInsufficientPermissions
		}
		content = sanitizeContent(content)
		if err := tx.UpdateMessageContent(messageID, content); err != nil {
			return err
		}

		subset, err := tx.GetSubset(msg.SubsetID)
		if err != nil {
			return err
		}

		msg.Content = content
		setID = subset.SetID
		subsetID = subset.ID
		result = *msg
		return nil
	})
	if err != nil {
		return err
	}

	m.Fabric.Broadcast(setID, fabric.MessageEvent(setID, subsetID, result, false))
	return nil
}

// Delete removes a message, author-only, and broadcasts its removal (spec
// §4.4 "Update/delete message": "Delete broadcasts message (deleted=true)").
func (m *Messages) Delete(ctx context.Context, token, messageID string) error {
	var setID, subsetID string
	var result models.Message

	err := m.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		msg, err := tx.GetMessage(messageID)
		if err != nil {
			return apperr.ErrMessageNotFound
		}
		if msg.AuthorID != caller.ID {
			return apperr.ErrInsufficientPermissions
		}
		if err := tx.DeleteMessage(messageID); err != nil {
			return err
		}

		subset, err := tx.GetSubset(msg.SubsetID)
		if err != nil {
			return err
		}

		setID = subset.SetID
		subsetID = subset.ID
		result = *msg
		return nil
	})
	if err != nil {
		return err
	}

	m.Fabric.Broadcast(setID, fabric.MessageEvent(setID, subsetID, result, true))
	return nil
}

// Typing emits a typing notification, requiring set membership; purely a
// broadcast, no persistence (spec §4.4 "Typing notification").
func (m *Messages) Typing(ctx context.Context, token, subsetID string) error {
	var uid, setID string
	err := m.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		subset, err := tx.GetSubset(subsetID)
		if err != nil {
			return apperr.ErrSetNotFound
		}
		if _, err := tx.GetMembership(caller.ID, subset.SetID); err != nil {
			return apperr.ErrNotAMember
		}
		uid = caller.ID
		setID = subset.SetID
		return nil
	})
	if err != nil {
		return err
	}

	m.Fabric.Broadcast(setID, fabric.TypingEvent(subsetID, uid))
	return nil
}
