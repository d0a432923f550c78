package mocks

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/models"
)

var ErrMockFailure = errors.New("mock storage failure")

// MockDocumentStorage реализует интерфейс document.Storage для тестирования.
// Если Fail выставлен, все методы возвращают ErrMockFailure.
type MockDocumentStorage struct {
	mu     sync.Mutex
	docs   map[string]*models.Document // collection/id -> document
	nextID int
	Fail   bool
	Calls  []string
}

func NewMockDocumentStorage() *MockDocumentStorage {
	return &MockDocumentStorage{
		docs:   make(map[string]*models.Document),
		nextID: 1,
	}
}

func key(collection, id string) string {
	return collection + "/" + id
}

func (m *MockDocumentStorage) call(name string) error {
	m.Calls = append(m.Calls, name)
	if m.Fail {
		return ErrMockFailure
	}
	return nil
}

func (m *MockDocumentStorage) Create(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("Create"); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = strconv.Itoa(m.nextID)
		m.nextID++
	}
	m.docs[key(doc.Collection, doc.ID)] = doc.Clone()
	return nil
}

func (m *MockDocumentStorage) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("Get"); err != nil {
		return nil, err
	}

	doc, ok := m.docs[key(collection, id)]
	if !ok {
		return nil, document.ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MockDocumentStorage) List(ctx context.Context, collection string) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("List"); err != nil {
		return nil, err
	}

	var out []*models.Document
	for _, doc := range m.docs {
		if doc.Collection == collection {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (m *MockDocumentStorage) Update(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("Update"); err != nil {
		return err
	}

	if _, ok := m.docs[key(doc.Collection, doc.ID)]; !ok {
		return document.ErrNotFound
	}
	m.docs[key(doc.Collection, doc.ID)] = doc.Clone()
	return nil
}

func (m *MockDocumentStorage) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("Delete"); err != nil {
		return nil, err
	}

	doc, ok := m.docs[key(collection, id)]
	if !ok {
		return nil, document.ErrNotFound
	}
	delete(m.docs, key(collection, id))
	return doc.Clone(), nil
}

func (m *MockDocumentStorage) Count(ctx context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call("Count"); err != nil {
		return 0, err
	}

	n := 0
	for _, doc := range m.docs {
		if doc.Collection == collection {
			n++
		}
	}
	return n, nil
}
