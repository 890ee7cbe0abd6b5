package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
)

// StaticAuthorizer grants review rights to a fixed set of user IDs loaded
// from configuration. An empty list means nobody can review, which keeps a
// misconfigured deployment from publishing anything.
type StaticAuthorizer struct {
	reviewers map[string]struct{}
	logger    *zap.Logger
}

// NewStaticAuthorizer creates an authorizer over a configured reviewer list
func NewStaticAuthorizer(reviewerIDs []string, logger *zap.Logger) port.Authorizer {
	reviewers := make(map[string]struct{}, len(reviewerIDs))
	for _, id := range reviewerIDs {
		reviewers[id] = struct{}{}
	}
	return &StaticAuthorizer{reviewers: reviewers, logger: logger}
}

// CanReview reports whether the user is in the reviewer pool
func (a *StaticAuthorizer) CanReview(_ context.Context, userID string) bool {
	_, ok := a.reviewers[userID]
	if !ok {
		a.logger.Debug("Review denied for user", zap.String("user_id", userID))
	}
	return ok
}
