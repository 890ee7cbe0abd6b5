package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/domain/entity"
	"github.com/presslane/docflow/internal/domain/event"
)

type mockNotifier struct {
	reviewCalls   int
	decisionCalls int
	decisions     []string
	failuresLeft  int
	lastCtxErr    error
}

func (m *mockNotifier) NotifyReviewRequested(ctx context.Context, doc *entity.Document) error {
	m.reviewCalls++
	m.lastCtxErr = ctx.Err()
	if m.failuresLeft > 0 {
		m.failuresLeft--
		return errors.New("transient send failure")
	}
	return nil
}

func (m *mockNotifier) NotifyDecision(ctx context.Context, doc *entity.Document, decision, note string) error {
	m.decisionCalls++
	m.decisions = append(m.decisions, decision)
	if m.failuresLeft > 0 {
		m.failuresLeft--
		return errors.New("transient send failure")
	}
	return nil
}

func newNotificationFixture(notifier *mockNotifier) (NotificationService, *memDocRepo) {
	docs := newMemDocRepo()
	svc := &notificationServiceImpl{
		docRepo:       docs,
		notifier:      notifier,
		maxRetries:    3,
		retryInterval: time.Millisecond,
		logger:        nopLogger{},
	}
	return svc, docs
}

func seedDocument(t *testing.T, docs *memDocRepo) *entity.Document {
	t.Helper()
	doc := &entity.Document{Title: "On Typestates", AuthorID: "ada", Stage: "IN_REVIEW", Body: "body"}
	require.NoError(t, docs.Create(context.Background(), doc))
	return doc
}

func TestNotifyReviewRequested_RetriesTransientFailures(t *testing.T) {
	notifier := &mockNotifier{failuresLeft: 2}
	svc, docs := newNotificationFixture(notifier)
	doc := seedDocument(t, docs)

	err := svc.NotifyReviewRequested(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, notifier.reviewCalls)
}

func TestNotifyReviewRequested_GivesUpAfterMaxRetries(t *testing.T) {
	notifier := &mockNotifier{failuresLeft: 10}
	svc, docs := newNotificationFixture(notifier)
	doc := seedDocument(t, docs)

	err := svc.NotifyReviewRequested(context.Background(), doc.ID)
	require.Error(t, err)
	// Initial attempt plus three retries.
	assert.Equal(t, 4, notifier.reviewCalls)
}

func TestNotifyDecision_UnknownDocument(t *testing.T) {
	svc, _ := newNotificationFixture(&mockNotifier{})

	err := svc.NotifyDecision(context.Background(), 404, "REJECTED", "")
	assert.Error(t, err)
}

func TestRegisterHandlers_ReactsToLifecycleEvents(t *testing.T) {
	notifier := &mockNotifier{}
	svc, docs := newNotificationFixture(notifier)
	doc := seedDocument(t, docs)

	d := dispatcher.NewDispatcher()
	svc.RegisterHandlers(d)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeDocumentSubmitted, doc.ID, nil)))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeDocumentRejected, doc.ID, map[string]interface{}{"note": "redo"})))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeDocumentPublished, doc.ID, nil)))

	assert.Equal(t, 1, notifier.reviewCalls)
	assert.Equal(t, 2, notifier.decisionCalls)
	assert.Equal(t, []string{"REJECTED", "PUBLISHED"}, notifier.decisions)
}

func TestRegisterHandlers_DeliversAfterRequestContextEnds(t *testing.T) {
	notifier := &mockNotifier{}
	svc, docs := newNotificationFixture(notifier)
	doc := seedDocument(t, docs)

	d := dispatcher.NewDispatcher()
	svc.RegisterHandlers(d)

	// The submit event is dispatched from an HTTP handler whose request
	// context is canceled as soon as the response is written. The send
	// and its retry loop must still complete.
	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentSubmitted, doc.ID, nil))
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, 1, notifier.reviewCalls)
	assert.NoError(t, notifier.lastCtxErr)
}

func TestRegisterHandlers_RetriesSurviveRequestCancellation(t *testing.T) {
	notifier := &mockNotifier{failuresLeft: 2}
	svc, docs := newNotificationFixture(notifier)
	doc := seedDocument(t, docs)

	d := dispatcher.NewDispatcher()
	svc.RegisterHandlers(d)

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentSubmitted, doc.ID, nil))
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, 3, notifier.reviewCalls)
	assert.NoError(t, notifier.lastCtxErr)
}
