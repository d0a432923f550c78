package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/models"
)

type DocumentMemoryStorage struct {
	mu   sync.RWMutex
	docs map[string]map[string]*models.Document // collection -> id -> document
	now  func() time.Time
}

func NewDocumentMemoryStorage() *DocumentMemoryStorage {
	return &DocumentMemoryStorage{
		docs: make(map[string]map[string]*models.Document),
		now:  time.Now,
	}
}

func (s *DocumentMemoryStorage) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	byID, ok := s.docs[doc.Collection]
	if !ok {
		byID = make(map[string]*models.Document)
		s.docs[doc.Collection] = byID
	}
	if _, exists := byID[doc.ID]; exists {
		return fmt.Errorf("document %s already exists in %s", doc.ID, doc.Collection)
	}

	now := s.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	byID[doc.ID] = doc.Clone()

	return nil
}

func (s *DocumentMemoryStorage) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", document.ErrNotFound, collection, id)
	}
	return doc.Clone(), nil
}

// List возвращает документы в порядке создания
func (s *DocumentMemoryStorage) List(ctx context.Context, collection string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Document, 0, len(s.docs[collection]))
	for _, doc := range s.docs[collection] {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *DocumentMemoryStorage) Update(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[doc.Collection][doc.ID]
	if !ok {
		return fmt.Errorf("%w: %s/%s", document.ErrNotFound, doc.Collection, doc.ID)
	}

	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = s.now()
	s.docs[doc.Collection][doc.ID] = doc.Clone()

	return nil
}

func (s *DocumentMemoryStorage) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", document.ErrNotFound, collection, id)
	}
	delete(s.docs[collection], id)

	return doc.Clone(), nil
}

func (s *DocumentMemoryStorage) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs[collection]), nil
}
