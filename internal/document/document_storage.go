package document

import (
	"context"
	"errors"

	"github.com/MinSomai/payload/models"
)

var ErrNotFound = errors.New("document not found")

// Storage хранилище документов, ключ - slug коллекции
type Storage interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	List(ctx context.Context, collection string) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, collection, id string) (*models.Document, error)
	Count(ctx context.Context, collection string) (int, error)
}
