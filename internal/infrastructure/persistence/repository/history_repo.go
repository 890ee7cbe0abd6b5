package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/entity"
	"github.com/presslane/docflow/pkg/database"
)

// HistoryRepository implements port.HistoryRepository over sqlite
type HistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a transition history row
func (r *HistoryRepository) Create(ctx context.Context, h *entity.TransitionHistory) error {
	query := `
		INSERT INTO transition_history (
			document_id, actor_id, previous_stage, new_stage, trigger_name, note, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		h.DocumentID,
		h.ActorID,
		h.PreviousStage,
		h.NewStage,
		h.Trigger,
		h.Note,
		h.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Error(err))
		return fmt.Errorf("failed to create history record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// GetByDocumentID returns the transition trail for a document in order
func (r *HistoryRepository) GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.TransitionHistory, error) {
	query := `
		SELECT id, document_id, actor_id, previous_stage, new_stage, trigger_name, note, timestamp
		FROM transition_history
		WHERE document_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("document_id", documentID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var history []*entity.TransitionHistory
	for rows.Next() {
		var h entity.TransitionHistory
		if err := rows.Scan(
			&h.ID,
			&h.DocumentID,
			&h.ActorID,
			&h.PreviousStage,
			&h.NewStage,
			&h.Trigger,
			&h.Note,
			&h.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
