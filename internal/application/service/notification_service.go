package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/event"
)

// NotificationService delivers lifecycle notifications. Sends are retried
// with exponential backoff since the channel is an external messaging API.
type NotificationService interface {
	NotifyReviewRequested(ctx context.Context, documentID int64) error
	NotifyDecision(ctx context.Context, documentID int64, decision, note string) error

	// RegisterHandlers subscribes the service to the lifecycle events it
	// reacts to
	RegisterHandlers(d dispatcher.Dispatcher)
}

type notificationServiceImpl struct {
	docRepo       port.DocumentRepository
	notifier      port.Notifier
	maxRetries    uint64
	retryInterval time.Duration
	logger        Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(docRepo port.DocumentRepository, notifier port.Notifier, logger Logger) NotificationService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &notificationServiceImpl{
		docRepo:       docRepo,
		notifier:      notifier,
		maxRetries:    3,
		retryInterval: 500 * time.Millisecond,
		logger:        logger,
	}
}

// NotifyReviewRequested tells reviewers a document is waiting for them
func (s *notificationServiceImpl) NotifyReviewRequested(ctx context.Context, documentID int64) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	err = s.withRetry(ctx, func() error {
		return s.notifier.NotifyReviewRequested(ctx, doc)
	})
	if err != nil {
		s.logger.Error("Failed to notify reviewers", "document_id", documentID, "error", err)
		return fmt.Errorf("notify reviewers: %w", err)
	}

	s.logger.Info("Reviewers notified", "document_id", documentID, "stage", doc.Stage)
	return nil
}

// NotifyDecision tells the author about a review decision
func (s *notificationServiceImpl) NotifyDecision(ctx context.Context, documentID int64, decision, note string) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	err = s.withRetry(ctx, func() error {
		return s.notifier.NotifyDecision(ctx, doc, decision, note)
	})
	if err != nil {
		s.logger.Error("Failed to notify author",
			"document_id", documentID,
			"decision", decision,
			"error", err,
		)
		return fmt.Errorf("notify author: %w", err)
	}

	s.logger.Info("Author notified", "document_id", documentID, "decision", decision)
	return nil
}

// RegisterHandlers subscribes to submitted, rejected and published events
func (s *notificationServiceImpl) RegisterHandlers(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeDocumentSubmitted, "notify-reviewers", func(ctx context.Context, evt *event.Event) error {
		return s.NotifyReviewRequested(ctx, evt.DocumentID)
	})
	d.SubscribeNamed(event.TypeDocumentRejected, "notify-author-rejected", func(ctx context.Context, evt *event.Event) error {
		return s.NotifyDecision(ctx, evt.DocumentID, "REJECTED", evt.GetPayloadString("note"))
	})
	d.SubscribeNamed(event.TypeDocumentPublished, "notify-author-published", func(ctx context.Context, evt *event.Event) error {
		return s.NotifyDecision(ctx, evt.DocumentID, "PUBLISHED", "")
	})
}

func (s *notificationServiceImpl) withRetry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, s.maxRetries), ctx)
	return backoff.Retry(op, policy)
}
