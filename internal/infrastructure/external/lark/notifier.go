package lark

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/entity"
)

// messageSender is the slice of Client the notifier needs
type messageSender interface {
	SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
}

// Notifier delivers lifecycle notifications over Lark instant messages.
// Reviewers are addressed by open_id; authors by whatever ID type the
// deployment maps author identifiers to.
type Notifier struct {
	sender       messageSender
	reviewerIDs  []string
	authorIDType string
	logger       *zap.Logger
}

// NewNotifier creates a Lark-backed notifier
func NewNotifier(client *Client, cfg Config, logger *zap.Logger) port.Notifier {
	authorIDType := cfg.AuthorIDType
	if authorIDType == "" {
		authorIDType = "open_id"
	}
	return &Notifier{
		sender:       client,
		reviewerIDs:  cfg.ReviewerIDs,
		authorIDType: authorIDType,
		logger:       logger,
	}
}

// NotifyReviewRequested messages every configured reviewer about a
// document waiting for review. Delivery is best-effort per reviewer;
// the first failure is returned after all sends were attempted.
func (n *Notifier) NotifyReviewRequested(ctx context.Context, doc *entity.Document) error {
	text := fmt.Sprintf("Document %q (%s) by %s is waiting for review.",
		doc.Title, doc.PublicID, doc.AuthorID)
	content, err := textContent(text)
	if err != nil {
		return err
	}

	var firstErr error
	for _, reviewerID := range n.reviewerIDs {
		if _, err := n.sender.SendMessage(ctx, "open_id", reviewerID, "text", content); err != nil {
			n.logger.Error("Failed to notify reviewer",
				zap.String("reviewer_id", reviewerID),
				zap.String("document", doc.PublicID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// NotifyDecision messages the document's author about a review decision
func (n *Notifier) NotifyDecision(ctx context.Context, doc *entity.Document, decision, note string) error {
	text := fmt.Sprintf("Your document %q (%s) was %s.", doc.Title, doc.PublicID, decision)
	if note != "" {
		text += " Note: " + note
	}
	content, err := textContent(text)
	if err != nil {
		return err
	}

	_, err = n.sender.SendMessage(ctx, n.authorIDType, doc.AuthorID, "text", content)
	return err
}

func textContent(text string) (string, error) {
	raw, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode message content: %w", err)
	}
	return string(raw), nil
}
