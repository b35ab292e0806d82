package memory

import (
	"sort"

	"equion/internal/models"
	"equion/internal/storage"
)

func (t *tx) CreateMessage(m models.Message) error {
	stored := m
	t.s.messages[m.ID] = &stored
	return nil
}

func (t *tx) hydrateAttachment(m *models.Message) models.Message {
	out := *m
	if m.Attachment != nil {
		if f, ok := t.s.files[m.Attachment.ID]; ok {
			fc := *f
			out.Attachment = &fc
		}
	}
	return out
}

func (t *tx) GetMessage(id string) (*models.Message, error) {
	m, ok := t.s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := t.hydrateAttachment(m)
	return &out, nil
}

func (t *tx) GetMessagesForSubset(subsetID string, before *string, limit int) ([]models.Message, error) {
	var beforeSendTime *models.Message
	if before != nil {
		m, ok := t.s.messages[*before]
		if !ok {
			return nil, storage.ErrNotFound
		}
		beforeSendTime = m
	}

	var matched []*models.Message
	for _, m := range t.s.messages {
		if m.SubsetID != subsetID {
			continue
		}
		if beforeSendTime != nil && !m.SendTime.Before(beforeSendTime.SendTime) {
			continue
		}
		matched = append(matched, m)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].SendTime.After(matched[j].SendTime) })

	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]models.Message, 0, len(matched))
	for _, m := range matched {
		out = append(out, t.hydrateAttachment(m))
	}
	return out, nil
}

func (t *tx) UpdateMessageContent(id, content string) error {
	m, ok := t.s.messages[id]
	if !ok {
		return storage.ErrNotFound
	}
	m.Content = content
	return nil
}

func (t *tx) DeleteMessage(id string) error {
	if _, ok := t.s.messages[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.s.messages, id)
	return nil
}

func (t *tx) DeleteMessagesForSubset(subsetID string) error {
	for id, m := range t.s.messages {
		if m.SubsetID == subsetID {
			delete(t.s.messages, id)
		}
	}
	return nil
}
