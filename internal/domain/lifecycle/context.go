package lifecycle

import "context"

type reviewerKey struct{}

// WithReviewer returns a context carrying the identity of the user
// attempting a review action. Guards read it when evaluating transitions.
func WithReviewer(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, reviewerKey{}, userID)
}

// ReviewerFrom returns the reviewer identity carried by the context, or ""
func ReviewerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(reviewerKey{}).(string); ok {
		return v
	}
	return ""
}
