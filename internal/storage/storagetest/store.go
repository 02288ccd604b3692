// Package storagetest provides an in-memory stand-in for the Mongo-backed
// store, used by service and handler tests that should not require a live
// database. It mirrors the semantics of storage.MongoStorage, including
// insertion-order listing and the message visibility filter.
package storagetest

import (
	"context"
	"sync"

	"batepapo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu           sync.Mutex
	participants []models.Participant
	messages     []models.Message

	// InsertMessageErr, when set, is returned by InsertMessage. It exists
	// for exercising log-and-continue failure paths.
	InsertMessageErr error
}

func New() *Store {
	return &Store{}
}

func (s *Store) InsertParticipant(_ context.Context, p models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.participants {
		if existing.Name == p.Name {
			return models.ErrNameTaken
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.participants = append(s.participants, p)
	return nil
}

func (s *Store) FindParticipant(_ context.Context, name string) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Participant{}, models.ErrNotFound
}

func (s *Store) ListParticipants(_ context.Context) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out, nil
}

func (s *Store) SetLastStatus(_ context.Context, name string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			s.participants[i].LastStatus = ts
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *Store) DeleteParticipants(_ context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[string]bool, len(names))
	for _, name := range names {
		doomed[name] = true
	}

	kept := s.participants[:0]
	for _, p := range s.participants {
		if !doomed[p.Name] {
			kept = append(kept, p)
		}
	}
	s.participants = kept
	return nil
}

func (s *Store) InsertMessage(_ context.Context, m models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertMessageErr != nil {
		return s.InsertMessageErr
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.messages = append(s.messages, m)
	return nil
}

func (s *Store) MessagesFor(_ context.Context, user string, limit int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := []models.Message{}
	for _, m := range s.messages {
		if m.Type == models.TypeMessage || m.From == user || m.To == user || m.To == models.BroadcastRecipient {
			visible = append(visible, m)
		}
	}
	if limit > 0 && int64(len(visible)) > limit {
		visible = visible[int64(len(visible))-limit:]
	}
	return visible, nil
}

func (s *Store) FindMessage(_ context.Context, id string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.ID.Hex() == id {
			return m, nil
		}
	}
	return models.Message{}, models.ErrNotFound
}

func (s *Store) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID.Hex() == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// Messages returns a copy of the full message log, status notices included.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
