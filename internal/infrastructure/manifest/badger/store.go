package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/omarkov/insight-session/internal/core/domain"
)

type manifestEntry struct {
	ID          string `badgerhold:"key"`
	DisplayName string
	UploadedAt  time.Time
	PageCount   int
	Processing  string
	Position    int
}

type preference struct {
	Key   string `badgerhold:"key"`
	Value string
}

const (
	prefLastSelected = "last_selected_document"
	prefBearerToken  = "bearer_token"
	prefUserIdentity = "user_identity"
)

// ManifestStore persists the minimal document manifest and the
// last-selected document id.
type ManifestStore struct {
	db *DB
}

func NewManifestStore(db *DB) *ManifestStore {
	return &ManifestStore{db: db}
}

func (s *ManifestStore) SaveDocument(ctx context.Context, doc domain.Document) error {
	entry := manifestEntry{
		ID:          doc.ID,
		DisplayName: doc.DisplayName,
		UploadedAt:  doc.UploadedAt,
		PageCount:   doc.PageCount,
		Processing:  string(doc.Processing),
		Position:    s.nextPosition(doc.ID),
	}
	if err := s.db.Store().Upsert(doc.ID, entry); err != nil {
		return fmt.Errorf("save manifest entry: %w", err)
	}
	return nil
}

// nextPosition keeps insertion order of first occurrence: an existing entry
// keeps its slot, a new one goes to the end.
func (s *ManifestStore) nextPosition(id string) int {
	var existing manifestEntry
	if err := s.db.Store().Get(id, &existing); err == nil {
		return existing.Position
	}
	count, err := s.db.Store().Count(&manifestEntry{}, nil)
	if err != nil {
		return 0
	}
	return int(count)
}

func (s *ManifestStore) DeleteDocument(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &manifestEntry{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete manifest entry: %w", err)
	}
	return nil
}

func (s *ManifestStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var entries []manifestEntry
	if err := s.db.Store().Find(&entries, (&badgerhold.Query{}).SortBy("Position")); err != nil {
		return nil, fmt.Errorf("list manifest entries: %w", err)
	}
	docs := make([]domain.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, domain.Document{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			UploadedAt:  e.UploadedAt,
			PageCount:   e.PageCount,
			Processing:  domain.ProcessingState(e.Processing),
		})
	}
	return docs, nil
}

func (s *ManifestStore) SaveLastSelected(ctx context.Context, id string) error {
	return s.savePref(prefLastSelected, id)
}

func (s *ManifestStore) LastSelected(ctx context.Context) (string, error) {
	return s.loadPref(prefLastSelected)
}

func (s *ManifestStore) savePref(key, value string) error {
	if err := s.db.Store().Upsert(key, preference{Key: key, Value: value}); err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}

func (s *ManifestStore) loadPref(key string) (string, error) {
	var pref preference
	if err := s.db.Store().Get(key, &pref); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load preference %s: %w", key, err)
	}
	return pref.Value, nil
}

// CredentialStore keeps the bearer credential in the same badger store.
type CredentialStore struct {
	db *DB
}

func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Token(ctx context.Context) (string, error) {
	var pref preference
	if err := s.db.Store().Get(prefBearerToken, &pref); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return pref.Value, nil
}

func (s *CredentialStore) SaveToken(ctx context.Context, token string) error {
	if err := s.db.Store().Upsert(prefBearerToken, preference{Key: prefBearerToken, Value: token}); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.db.Store().Delete(prefBearerToken, &preference{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SaveIdentity records the current user identity.
func (s *CredentialStore) SaveIdentity(ctx context.Context, identity string) error {
	if err := s.db.Store().Upsert(prefUserIdentity, preference{Key: prefUserIdentity, Value: identity}); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *CredentialStore) Identity(ctx context.Context) (string, error) {
	var pref preference
	if err := s.db.Store().Get(prefUserIdentity, &pref); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load identity: %w", err)
	}
	return pref.Value, nil
}
