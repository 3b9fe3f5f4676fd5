package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

const draftsBucket = "drafts"

// DraftStore persists one draft per company in a local bbolt database.
type DraftStore struct {
	db *bolt.DB
}

var _ portsrepo.DraftStore = (*DraftStore)(nil)

// New opens (or creates) the draft database and initializes the bucket.
func New(dbPath string) (*DraftStore, error) {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(draftsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", draftsBucket, err)
	}

	return &DraftStore{db: db}, nil
}

// Close closes the database.
func (s *DraftStore) Close() error {
	return s.db.Close()
}

// SaveDraft overwrites the company's draft record.
func (s *DraftStore) SaveDraft(ctx context.Context, companyID string, draft domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(draftsBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", draftsBucket)
		}
		return b.Put([]byte(companyID), data)
	})
}

// LoadDraft returns the company's draft or apperrors.ErrNotFound.
func (s *DraftStore) LoadDraft(ctx context.Context, companyID string) (*domain.Draft, error) {
	var draft domain.Draft
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(draftsBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", draftsBucket)
		}
		data := b.Get([]byte(companyID))
		if data == nil {
			return apperrors.ErrNotFound
		}
		return json.Unmarshal(data, &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ClearDraft removes the company's draft record. Absent records are fine.
func (s *DraftStore) ClearDraft(ctx context.Context, companyID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(draftsBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", draftsBucket)
		}
		return b.Delete([]byte(companyID))
	})
}
