package memory

import (
	"bytes"
	"context"
	"testing"

	"equion/internal/models"
	"equion/internal/storage"
)

func TestCreateFileThenGetFileRoundTrip(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateFile(models.File{ID: "file_1", Name: "avatar.png", Content: []byte("bytes")})
	})
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		got, err := tx.GetFile("file_1")
		if err != nil {
			return err
		}
		if got.Name != "avatar.png" || !bytes.Equal(got.Content, []byte("bytes")) {
			t.Fatalf("GetFile() = %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
}

func TestGetFileUnknownIDReturnsNotFound(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		_, err := tx.GetFile("does-not-exist")
		return err
	})
	if err != storage.ErrNotFound {
		t.Fatalf("GetFile() error = %v, want storage.ErrNotFound", err)
	}
}
