package session

import (
	"context"
	"sync"
	"time"

	"tourbooking/internal/domain/models"
)

type memoryEntry struct {
	draft   models.BookingDraft
	expires time.Time
}

// MemoryStore is the single-process fallback used when no Redis is configured.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (models.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[draftKey(sessionID)]
	if !ok {
		return models.BookingDraft{}, ErrNoDraft
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.entries, draftKey(sessionID))
		return models.BookingDraft{}, ErrNoDraft
	}
	return cloneDraft(e.draft), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, draft models.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		s.entries = map[string]memoryEntry{}
	}
	e := memoryEntry{draft: cloneDraft(draft)}
	if s.TTL > 0 {
		e.expires = s.now().Add(s.TTL)
	}
	s.entries[draftKey(sessionID)] = e
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, draftKey(sessionID))
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, sessionID string, from, to models.DraftStep) (models.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey(sessionID)
	e, ok := s.entries[key]
	if !ok {
		return models.BookingDraft{}, ErrNoDraft
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.entries, key)
		return models.BookingDraft{}, ErrNoDraft
	}
	if e.draft.Step != from {
		return models.BookingDraft{}, ErrDraftMoved
	}
	claimed := cloneDraft(e.draft)
	e.draft.Step = to
	s.entries[key] = e
	return claimed, nil
}

// cloneDraft copies the participant slice so callers never share backing arrays.
func cloneDraft(d models.BookingDraft) models.BookingDraft {
	if d.ParticipantDetails != nil {
		d.ParticipantDetails = append([]models.ParticipantInput(nil), d.ParticipantDetails...)
	}
	return d
}
