package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/document"
	"github.com/presslane/docflow/internal/domain/entity"
)

// In-memory repositories standing in for the sqlite implementations

type memDocRepo struct {
	docs   map[int64]*entity.Document
	nextID int64
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: make(map[int64]*entity.Document)}
}

func (m *memDocRepo) Create(ctx context.Context, doc *entity.Document) error {
	m.nextID++
	doc.ID = m.nextID
	clone := *doc
	m.docs[doc.ID] = &clone
	return nil
}

func (m *memDocRepo) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (m *memDocRepo) GetByPublicID(ctx context.Context, publicID string) (*entity.Document, error) {
	for _, doc := range m.docs {
		if doc.PublicID == publicID {
			clone := *doc
			return &clone, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *memDocRepo) Update(ctx context.Context, doc *entity.Document) error {
	if _, ok := m.docs[doc.ID]; !ok {
		return port.ErrNotFound
	}
	clone := *doc
	m.docs[doc.ID] = &clone
	return nil
}

func (m *memDocRepo) List(ctx context.Context, limit, offset int) ([]*entity.Document, error) {
	out := make([]*entity.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		clone := *doc
		out = append(out, &clone)
	}
	return out, nil
}

type memHistoryRepo struct {
	rows []*entity.TransitionHistory
}

func (m *memHistoryRepo) Create(ctx context.Context, h *entity.TransitionHistory) error {
	clone := *h
	m.rows = append(m.rows, &clone)
	return nil
}

func (m *memHistoryRepo) GetByDocumentID(ctx context.Context, documentID int64) ([]*entity.TransitionHistory, error) {
	out := []*entity.TransitionHistory{}
	for _, h := range m.rows {
		if h.DocumentID == documentID {
			out = append(out, h)
		}
	}
	return out, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type allowAuthorizer struct {
	denied map[string]bool
}

func (a allowAuthorizer) CanReview(ctx context.Context, userID string) bool {
	return !a.denied[userID]
}

type fixture struct {
	svc     DocumentService
	docs    *memDocRepo
	history *memHistoryRepo
}

func newFixture(t *testing.T, opts ...DocumentServiceOption) *fixture {
	t.Helper()
	docs := newMemDocRepo()
	history := &memHistoryRepo{}
	svc := NewDocumentService(docs, history, passthroughTx{}, allowAuthorizer{}, dispatcher.NewDispatcher(), opts...)
	return &fixture{svc: svc, docs: docs, history: history}
}

func (f *fixture) draft(t *testing.T, body string) *DocumentView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), CreateInput{
		Title:    "On Typestates",
		Body:     body,
		AuthorID: "ada",
	})
	require.NoError(t, err)
	return view
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing body", CreateInput{Title: "t", AuthorID: "ada"}},
		{"missing title", CreateInput{Body: "b", AuthorID: "ada"}},
		{"missing author", CreateInput{Title: "t", Body: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
}

func TestCreate_StartsInDraft(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "first words")

	assert.Equal(t, document.StageDraft, view.Stage)
	assert.NotEmpty(t, view.PublicID)
	assert.Equal(t, []string{"SUBMIT"}, view.AvailableActions)
	assert.Equal(t, "ada", view.Metadata["author"])

	history, err := f.svc.History(context.Background(), view.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "CREATE", history[0].Trigger)
}

func TestAppendText_OnlyInDraft(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")

	_, err := f.svc.AppendText(context.Background(), view.ID, " more")
	require.NoError(t, err)

	_, err = f.svc.SubmitForReview(context.Background(), view.ID)
	require.NoError(t, err)

	_, err = f.svc.AppendText(context.Background(), view.ID, " illegal")
	assert.ErrorIs(t, err, ErrStageConflict)
}

func TestApprove_RequiresTwoApprovals(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")

	_, err := f.svc.SubmitForReview(context.Background(), view.ID)
	require.NoError(t, err)

	after, err := f.svc.Approve(context.Background(), view.ID, "ron")
	require.NoError(t, err)
	assert.Equal(t, document.StageSecondReview, after.Stage)

	// One approval is not enough to read content.
	_, err = f.svc.Content(context.Background(), view.ID)
	assert.ErrorIs(t, err, ErrNotPublished)

	after, err = f.svc.Approve(context.Background(), view.ID, "maria")
	require.NoError(t, err)
	assert.Equal(t, document.StagePublished, after.Stage)
	assert.Empty(t, after.AvailableActions)

	content, err := f.svc.Content(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft text", content)
}

func TestApprove_RejectsSelfApproval(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")
	_, err := f.svc.SubmitForReview(context.Background(), view.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), view.ID, "ada")
	assert.ErrorIs(t, err, ErrSelfApproval)
}

func TestApprove_RequiresAuthorization(t *testing.T) {
	docs := newMemDocRepo()
	svc := NewDocumentService(docs, &memHistoryRepo{}, passthroughTx{},
		allowAuthorizer{denied: map[string]bool{"intern": true}}, dispatcher.NewDispatcher())

	view, err := svc.Create(context.Background(), CreateInput{Title: "t", Body: "b", AuthorID: "ada"})
	require.NoError(t, err)
	_, err = svc.SubmitForReview(context.Background(), view.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), view.ID, "intern")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.Reject(context.Background(), view.ID, "intern", "nope")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestApprove_OutOfStage(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")

	_, err := f.svc.Approve(context.Background(), view.ID, "ron")
	assert.ErrorIs(t, err, ErrStageConflict)
}

// The round trip from the two-approval policy: revise after a rejection,
// resubmit, approve twice, read back the accumulated body.
func TestLifecycle_RoundTripThroughService(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")
	ctx := context.Background()

	_, err := f.svc.AppendText(ctx, view.ID, " more")
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, view.ID)
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, view.ID, "ron", "needs a conclusion")
	require.NoError(t, err)
	assert.Equal(t, document.StageDraft, rejected.Stage)
	assert.Equal(t, "needs a conclusion", rejected.Metadata[document.MetaRejectionNote])

	_, err = f.svc.AppendText(ctx, view.ID, " fix")
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, view.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, view.ID, "ron")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, view.ID, "maria")
	require.NoError(t, err)

	content, err := f.svc.Content(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft text more fix", content)

	history, err := f.svc.History(ctx, view.ID)
	require.NoError(t, err)
	// CREATE, SUBMIT, REJECT, SUBMIT, APPROVE, APPROVE
	require.Len(t, history, 6)
	assert.Equal(t, "REJECT", history[2].Trigger)
	assert.Equal(t, document.StagePublished, history[5].NewStage)
}

func TestReject_ResetsApprovals(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")
	ctx := context.Background()

	_, err := f.svc.SubmitForReview(ctx, view.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, view.ID, "ron")
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, view.ID, "maria", "second opinion")
	require.NoError(t, err)

	stored, err := f.docs.GetByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Approvals)
	assert.Equal(t, document.StageDraft, stored.Stage)
	// First reviewer's metadata survives the rejection.
	assert.Contains(t, stored.Metadata, "ron")
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

type staticCopyEditor struct {
	suggestions []port.Suggestion
}

func (s staticCopyEditor) Suggest(ctx context.Context, body string) ([]port.Suggestion, error) {
	return s.suggestions, nil
}

func TestCopyEdit(t *testing.T) {
	ce := staticCopyEditor{suggestions: []port.Suggestion{{Span: "draft text", Comment: "tighten"}}}
	f := newFixture(t, WithCopyEditor(ce))
	view := f.draft(t, "draft text")
	ctx := context.Background()

	suggestions, err := f.svc.CopyEdit(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	_, err = f.svc.SubmitForReview(ctx, view.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, view.ID, "ron")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, view.ID, "maria")
	require.NoError(t, err)

	_, err = f.svc.CopyEdit(ctx, view.ID)
	assert.ErrorIs(t, err, ErrStageConflict)
}

func TestCopyEdit_Unconfigured(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")

	_, err := f.svc.CopyEdit(context.Background(), view.ID)
	assert.ErrorIs(t, err, ErrCopyEditorUnavailable)
}

type staticExtractor struct {
	text string
}

func (s staticExtractor) ExtractText(path string) (string, error) {
	return s.text, nil
}

func TestCreateFromManuscript(t *testing.T) {
	f := newFixture(t, WithManuscriptExtractor(staticExtractor{text: "extracted body"}))

	view, err := f.svc.CreateFromManuscript(context.Background(), "Imported", "ada", "/tmp/m.pdf")
	require.NoError(t, err)
	assert.Equal(t, document.StageDraft, view.Stage)
	assert.Equal(t, "/tmp/m.pdf", view.Metadata["source"])
}

func TestAvailableActions_StableOrder(t *testing.T) {
	f := newFixture(t)
	view := f.draft(t, "draft text")
	ctx := context.Background()

	_, err := f.svc.SubmitForReview(ctx, view.ID)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := f.svc.Get(ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"APPROVE", "REJECT"}, got.AvailableActions)
	}
}

func TestLock_ReleasedWhenIdle(t *testing.T) {
	f := newFixture(t)
	impl := f.svc.(*documentServiceImpl)
	ctx := context.Background()
	view := f.draft(t, "draft text")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := f.svc.AppendText(ctx, view.ID, " more")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	impl.mu.Lock()
	defer impl.mu.Unlock()
	assert.Empty(t, impl.locks)
}
