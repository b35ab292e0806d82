package memory

import (
	"equion/internal/models"
	"equion/internal/storage"
)

func (t *tx) CreateFile(f models.File) error {
	stored := f
	t.s.files[f.ID] = &stored
	return nil
}

func (t *tx) GetFile(id string) (*models.File, error) {
	f, ok := t.s.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *f
	return &c, nil
}
