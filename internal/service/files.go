package service

import (
	"context"

	"equion/internal/apperr"
	"equion/internal/fabric"
	"equion/internal/models"
	"equion/internal/storage"
	"equion/internal/voice"
)

// Files is the file-upload/download service shared by the message
// attachment flow and the profile-image upload endpoint (spec §9
// "Attachment flow … share one 'create file' transaction operation").
type Files struct {
	Store  storage.Store
	Fabric *fabric.Fabric
	Voice  *voice.Registry
}

// NewFiles constructs a Files service.
func NewFiles(store storage.Store, f *fabric.Fabric, v *voice.Registry) *Files {
	return &Files{Store: store, Fabric: f, Voice: v}
}

// GetFile fetches a file's bytes and metadata for the download endpoint
// (spec §4.8 "Attachment download").
func (f *Files) GetFile(ctx context.Context, fileID string) (*models.File, error) {
	var out *models.File
	err := f.Store.WithTx(ctx, func(tx storage.Tx) error {
		file, err := tx.GetFile(fileID)
		if err != nil {
			return apperr.ErrFileNotFound
		}
		out = file
		return nil
	})
	return out, err
}

// UpdateUserImage creates a File owned by the token's user, sets it as
// their profile image, and fans out a user-update event to their sets
// (spec §4.8: "creates a File owned by the authenticated user, updates
// user.image, broadcasts a user-update event").
func (f *Files) UpdateUserImage(ctx context.Context, token, filename string, data []byte) error {
	fileID, err := storage.GenerateID("fil")
	if err != nil {
		return err
	}

	var setIDs []string
	var user *models.User

	err = f.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}

		file := models.File{
			ID:       fileID,
			Name:     filename,
			Content:  data,
			OwnerID:  caller.ID,
			MimeType: mimeFor(filename),
		}
		if err := tx.CreateFile(file); err != nil {
			return err
		}
		if err := tx.UpdateUserImage(caller.ID, fileID); err != nil {
			return err
		}

		updated, err := tx.GetUserByID(caller.ID)
		if err != nil {
			return err
		}
		ids, err := tx.GetSetIDsForUser(caller.ID)
		if err != nil {
			return err
		}

		user = updated
		setIDs = ids
		return nil
	})
	if err != nil {
		return err
	}

	user.Online = f.Voice.IsOnline(user.ID)
	for _, setID := range setIDs {
		f.Fabric.Broadcast(setID, fabric.UserEvent(setID, *user, false))
	}
	return nil
}
