package port

import (
	"context"
	"errors"

	"github.com/presslane/docflow/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no row matches
var ErrNotFound = errors.New("not found")

// DocumentRepository defines persistence operations for Document.
// The repository stores whichever stage a document is in as data; the
// service layer rebuilds the concrete state variant from it on load.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	GetByPublicID(ctx context.Context, publicID string) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	List(ctx context.Context, limit, offset int) ([]*entity.Document, error)
}

// HistoryRepository defines persistence operations for TransitionHistory
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.TransitionHistory) error
	GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.TransitionHistory, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
