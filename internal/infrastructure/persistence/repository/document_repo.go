package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/entity"
	"github.com/presslane/docflow/pkg/database"
)

// DocumentRepository implements port.DocumentRepository over sqlite
type DocumentRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new document row
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			public_id, title, author_id, stage, body, metadata, approvals,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.PublicID,
		doc.Title,
		doc.AuthorID,
		doc.Stage,
		doc.Body,
		doc.Metadata,
		doc.Approvals,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by its numeric id
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	return r.getOne(ctx, "WHERE id = ?", id)
}

// GetByPublicID retrieves a document by its public uuid
func (r *DocumentRepository) GetByPublicID(ctx context.Context, publicID string) (*entity.Document, error) {
	return r.getOne(ctx, "WHERE public_id = ?", publicID)
}

func (r *DocumentRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.Document, error) {
	query := `
		SELECT id, public_id, title, author_id, stage, body, metadata,
			approvals, published_at, created_at, updated_at
		FROM documents
	` + where

	var doc entity.Document
	var publishedAt sql.NullTime

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&doc.ID,
		&doc.PublicID,
		&doc.Title,
		&doc.AuthorID,
		&doc.Stage,
		&doc.Body,
		&doc.Metadata,
		&doc.Approvals,
		&publishedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if publishedAt.Valid {
		doc.PublishedAt = &publishedAt.Time
	}
	return &doc, nil
}

// Update rewrites the mutable columns of a document row
func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET stage = ?, body = ?, metadata = ?, approvals = ?,
			published_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.Stage,
		doc.Body,
		doc.Metadata,
		doc.Approvals,
		doc.PublishedAt,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update document", zap.Int64("id", doc.ID), zap.Error(err))
		return fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrNotFound
	}
	return nil
}

// List returns a page of documents ordered by creation time
func (r *DocumentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Document, error) {
	query := `
		SELECT id, public_id, title, author_id, stage, body, metadata,
			approvals, published_at, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var doc entity.Document
		var publishedAt sql.NullTime

		if err := rows.Scan(
			&doc.ID,
			&doc.PublicID,
			&doc.Title,
			&doc.AuthorID,
			&doc.Stage,
			&doc.Body,
			&doc.Metadata,
			&doc.Approvals,
			&publishedAt,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if publishedAt.Valid {
			doc.PublishedAt = &publishedAt.Time
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}
