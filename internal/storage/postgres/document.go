package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/MinSomai/payload/internal/document"
	"github.com/MinSomai/payload/models"
)

type DocumentPostgresStorage struct{}

func NewDocumentPostgresStorage() *DocumentPostgresStorage {
	return &DocumentPostgresStorage{}
}

func (s *DocumentPostgresStorage) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	err := DB.Create(doc).Error
	if err != nil {
		return fmt.Errorf("could not create document: %w", err)
	}
	return nil
}

func (s *DocumentPostgresStorage) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	var doc models.Document
	err := DB.Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("%w: %s/%s", document.ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get document by id: %w", err)
	}
	return &doc, nil
}

func (s *DocumentPostgresStorage) List(ctx context.Context, collection string) ([]*models.Document, error) {
	var docs []*models.Document
	err := DB.Where("collection = ?", collection).Order("created_at asc, id asc").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("could not list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentPostgresStorage) Update(ctx context.Context, doc *models.Document) error {
	existing, err := s.Get(ctx, doc.Collection, doc.ID)
	if err != nil {
		return err
	}

	doc.CreatedAt = existing.CreatedAt
	err = DB.Save(doc).Error
	if err != nil {
		return fmt.Errorf("could not update document: %w", err)
	}
	return nil
}

func (s *DocumentPostgresStorage) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	err = DB.Delete(doc).Error
	if err != nil {
		return nil, fmt.Errorf("could not delete document: %w", err)
	}
	return doc, nil
}

func (s *DocumentPostgresStorage) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := DB.Model(&models.Document{}).Where("collection = ?", collection).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("could not count documents: %w", err)
	}
	return count, nil
}
