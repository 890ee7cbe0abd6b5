package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/document"
	"github.com/presslane/docflow/internal/domain/entity"
	"github.com/presslane/docflow/internal/domain/event"
	"github.com/presslane/docflow/internal/domain/lifecycle"
)

// CreateInput is the payload for creating a document
type CreateInput struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	AuthorID string            `json:"author_id"`
	Metadata map[string]string `json:"metadata"`
}

// Validate checks the input before the engine is touched
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Body, validation.Required),
		validation.Field(&in.AuthorID, validation.Required),
	)
}

// DocumentView is the read model handed to the transport layer. It carries
// no body: unpublished content stays unreadable end to end.
type DocumentView struct {
	ID               int64             `json:"id"`
	PublicID         string            `json:"public_id"`
	Title            string            `json:"title"`
	AuthorID         string            `json:"author_id"`
	Stage            string            `json:"stage"`
	Metadata         map[string]string `json:"metadata"`
	AvailableActions []string          `json:"available_actions"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// DocumentService is the embedding-facing facade over the typestate core.
// It owns rehydration from storage, per-document serialization of
// operations, authorization checks ahead of transitions, and persistence
// plus event emission after them.
type DocumentService interface {
	Create(ctx context.Context, in CreateInput) (*DocumentView, error)
	CreateFromManuscript(ctx context.Context, title, authorID, path string) (*DocumentView, error)
	AppendText(ctx context.Context, id int64, text string) (*DocumentView, error)
	SubmitForReview(ctx context.Context, id int64) (*DocumentView, error)
	Approve(ctx context.Context, id int64, reviewerID string) (*DocumentView, error)
	Reject(ctx context.Context, id int64, reviewerID, note string) (*DocumentView, error)
	Content(ctx context.Context, id int64) (string, error)
	Get(ctx context.Context, id int64) (*DocumentView, error)
	List(ctx context.Context, limit, offset int) ([]*DocumentView, error)
	History(ctx context.Context, id int64) ([]*entity.TransitionHistory, error)
	CopyEdit(ctx context.Context, id int64) ([]port.Suggestion, error)
}

type documentServiceImpl struct {
	docRepo     port.DocumentRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	authorizer  port.Authorizer
	dispatcher  dispatcher.Dispatcher
	copyEditor  port.CopyEditor
	extractor   port.ManuscriptExtractor
	logger      Logger

	// One mutex per document id so concurrent callers cannot race a
	// document through overlapping transitions. The core itself is
	// single-owner by construction; this is the embedding system holding
	// up its side of that contract. Entries are reference-counted and
	// removed once the last in-flight operation releases them, so the map
	// is bounded by concurrency, not by document count.
	mu    sync.Mutex
	locks map[int64]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

// DocumentServiceOption configures the document service
type DocumentServiceOption func(*documentServiceImpl)

// WithCopyEditor enables advisory copy-editing suggestions
func WithCopyEditor(ce port.CopyEditor) DocumentServiceOption {
	return func(s *documentServiceImpl) {
		s.copyEditor = ce
	}
}

// WithManuscriptExtractor enables draft creation from manuscript files
func WithManuscriptExtractor(ex port.ManuscriptExtractor) DocumentServiceOption {
	return func(s *documentServiceImpl) {
		s.extractor = ex
	}
}

// WithLogger sets the service logger
func WithLogger(logger Logger) DocumentServiceOption {
	return func(s *documentServiceImpl) {
		s.logger = logger
	}
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	authorizer port.Authorizer,
	disp dispatcher.Dispatcher,
	opts ...DocumentServiceOption,
) DocumentService {
	s := &documentServiceImpl{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		dispatcher:  disp,
		logger:      nopLogger{},
		locks:       make(map[int64]*docLock),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates the input and creates a document in the Draft stage
func (s *documentServiceImpl) Create(ctx context.Context, in CreateInput) (*DocumentView, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	md := make(map[string]string, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		md[k] = v
	}
	md["author"] = in.AuthorID

	draft, err := document.New(in.Body, md)
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		PublicID:  uuid.NewString(),
		Title:     in.Title,
		AuthorID:  in.AuthorID,
		Stage:     draft.StageName(),
		Body:      in.Body,
		Metadata:  marshalMeta(draft.Meta()),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.TransitionHistory{
			DocumentID: doc.ID,
			ActorID:    in.AuthorID,
			NewStage:   doc.Stage,
			Trigger:    "CREATE",
			Timestamp:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document created",
		"document_id", doc.ID,
		"public_id", doc.PublicID,
		"author_id", in.AuthorID,
	)
	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentCreated, doc.ID, map[string]interface{}{
		"stage":  doc.Stage,
		"author": in.AuthorID,
	}))

	return s.view(doc), nil
}

// CreateFromManuscript extracts text from a manuscript file and creates a
// draft seeded with it
func (s *documentServiceImpl) CreateFromManuscript(ctx context.Context, title, authorID, path string) (*DocumentView, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("manuscript extractor is not configured")
	}

	body, err := s.extractor.ExtractText(path)
	if err != nil {
		return nil, fmt.Errorf("extract manuscript text: %w", err)
	}

	return s.Create(ctx, CreateInput{
		Title:    title,
		Body:     body,
		AuthorID: authorID,
		Metadata: map[string]string{"source": path},
	})
}

// AppendText extends the body of a document still in Draft
func (s *documentServiceImpl) AppendText(ctx context.Context, id int64, text string) (*DocumentView, error) {
	unlock := s.lock(id)
	defer unlock()

	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	draft, ok := stage.(*document.Draft)
	if !ok {
		return nil, fmt.Errorf("%w: AddText requires Draft, document %d is %s", ErrStageConflict, id, doc.Stage)
	}

	draft.AddText(text)
	doc.Body += text
	doc.Metadata = marshalMeta(draft.Meta())
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return s.view(doc), nil
}

// SubmitForReview moves a Draft into review
func (s *documentServiceImpl) SubmitForReview(ctx context.Context, id int64) (*DocumentView, error) {
	unlock := s.lock(id)
	defer unlock()

	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	draft, ok := stage.(*document.Draft)
	if !ok {
		return nil, fmt.Errorf("%w: SubmitForReview requires Draft, document %d is %s", ErrStageConflict, id, doc.Stage)
	}

	review := draft.RequestReview()
	if err := s.persistTransition(ctx, doc, review, doc.AuthorID, lifecycle.TriggerSubmit.String(), ""); err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentSubmitted, doc.ID, map[string]interface{}{
		"stage": doc.Stage,
	}))
	return s.view(doc), nil
}

// Approve records one approval by the given reviewer. The first approval
// moves the document into second review; the second publishes it.
func (s *documentServiceImpl) Approve(ctx context.Context, id int64, reviewerID string) (*DocumentView, error) {
	if !s.authorizer.CanReview(ctx, reviewerID) {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, reviewerID)
	}

	unlock := s.lock(id)
	defer unlock()

	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// The runtime table guards what the type system cannot see from here:
	// the reviewer identity. Self-approval is vetoed before any transition.
	machine := lifecycle.BuildEditorial(lifecycle.Stage(doc.Stage), doc.AuthorID)
	if err := machine.Fire(lifecycle.WithReviewer(ctx, reviewerID), lifecycle.TriggerApprove); err != nil {
		if errors.Is(err, lifecycle.ErrGuardFailed) {
			return nil, fmt.Errorf("%w: %s on document %d", ErrSelfApproval, reviewerID, id)
		}
		return nil, fmt.Errorf("%w: Approve on document %d in %s", ErrStageConflict, id, doc.Stage)
	}

	var next document.Stage
	switch v := stage.(type) {
	case *document.PendingReview:
		next = v.Approve(reviewerID)
		doc.Approvals = 1
	case *document.PendingSecondReview:
		published := v.Approve(reviewerID)
		next = published
		doc.Approvals = 2
		now := time.Now()
		doc.PublishedAt = &now
	default:
		return nil, fmt.Errorf("%w: Approve on document %d in %s", ErrStageConflict, id, doc.Stage)
	}

	if err := s.persistTransition(ctx, doc, next, reviewerID, lifecycle.TriggerApprove.String(), ""); err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentApproved, doc.ID, map[string]interface{}{
		"stage":    doc.Stage,
		"reviewer": reviewerID,
	}))
	if doc.Stage == document.StagePublished {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentPublished, doc.ID, map[string]interface{}{
			"reviewer": reviewerID,
		}))
	}
	return s.view(doc), nil
}

// Reject returns a document under review to Draft
func (s *documentServiceImpl) Reject(ctx context.Context, id int64, reviewerID, note string) (*DocumentView, error) {
	if !s.authorizer.CanReview(ctx, reviewerID) {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, reviewerID)
	}

	unlock := s.lock(id)
	defer unlock()

	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var draft *document.Draft
	switch v := stage.(type) {
	case *document.PendingReview:
		draft = v.Reject(reviewerID, note)
	case *document.PendingSecondReview:
		draft = v.Reject(reviewerID, note)
	default:
		return nil, fmt.Errorf("%w: Reject on document %d in %s", ErrStageConflict, id, doc.Stage)
	}

	doc.Approvals = 0
	if err := s.persistTransition(ctx, doc, draft, reviewerID, lifecycle.TriggerReject.String(), note); err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeDocumentRejected, doc.ID, map[string]interface{}{
		"reviewer": reviewerID,
		"note":     note,
	}))
	return s.view(doc), nil
}

// Content returns the body of a published document
func (s *documentServiceImpl) Content(ctx context.Context, id int64) (string, error) {
	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}

	published, ok := stage.(*document.Published)
	if !ok {
		return "", fmt.Errorf("%w: document %d is %s", ErrNotPublished, id, doc.Stage)
	}
	return published.Content(), nil
}

// Get returns the read model for a document
func (s *documentServiceImpl) Get(ctx context.Context, id int64) (*DocumentView, error) {
	doc, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(doc), nil
}

// List returns read models for a page of documents
func (s *documentServiceImpl) List(ctx context.Context, limit, offset int) ([]*DocumentView, error) {
	docs, err := s.docRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	views := make([]*DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, s.view(doc))
	}
	return views, nil
}

// History returns the transition audit trail for a document
func (s *documentServiceImpl) History(ctx context.Context, id int64) ([]*entity.TransitionHistory, error) {
	if _, _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByDocumentID(ctx, id)
}

// CopyEdit returns advisory suggestions for a document not yet published
func (s *documentServiceImpl) CopyEdit(ctx context.Context, id int64) ([]port.Suggestion, error) {
	if s.copyEditor == nil {
		return nil, ErrCopyEditorUnavailable
	}

	doc, stage, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, done := stage.(*document.Published); done {
		return nil, fmt.Errorf("%w: CopyEdit on document %d in %s", ErrStageConflict, id, doc.Stage)
	}

	return s.copyEditor.Suggest(ctx, doc.Body)
}

// load fetches a document row and rebuilds its concrete state variant
func (s *documentServiceImpl) load(ctx context.Context, id int64) (*entity.Document, document.Stage, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, id)
		}
		return nil, nil, fmt.Errorf("fetch document: %w", err)
	}

	stage, err := document.Restore(doc.Stage, doc.Body, unmarshalMeta(doc.Metadata))
	if err != nil {
		return nil, nil, fmt.Errorf("restore document %d: %w", id, err)
	}
	return doc, stage, nil
}

// persistTransition writes the post-transition row and the audit record in
// one transaction
func (s *documentServiceImpl) persistTransition(ctx context.Context, doc *entity.Document, next document.Stage, actorID, trigger, note string) error {
	previous := doc.Stage
	doc.Stage = next.StageName()
	doc.Metadata = marshalMeta(next.Meta())
	doc.UpdatedAt = time.Now()

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.historyRepo.Create(txCtx, &entity.TransitionHistory{
			DocumentID:    doc.ID,
			ActorID:       actorID,
			PreviousStage: previous,
			NewStage:      doc.Stage,
			Trigger:       trigger,
			Note:          note,
			Timestamp:     time.Now(),
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Document transitioned",
		"document_id", doc.ID,
		"previous_stage", previous,
		"new_stage", doc.Stage,
		"trigger", trigger,
		"actor_id", actorID,
	)
	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeStageChanged, doc.ID, map[string]interface{}{
		"previous_stage": previous,
		"new_stage":      doc.Stage,
		"trigger":        trigger,
	}))
	return nil
}

func (s *documentServiceImpl) view(doc *entity.Document) *DocumentView {
	actions := []string{}
	if stage := lifecycle.Stage(doc.Stage); stage.IsValid() {
		machine := lifecycle.BuildEditorial(stage, doc.AuthorID)
		for _, t := range machine.PermittedTriggers() {
			actions = append(actions, t.String())
		}
	}

	return &DocumentView{
		ID:               doc.ID,
		PublicID:         doc.PublicID,
		Title:            doc.Title,
		AuthorID:         doc.AuthorID,
		Stage:            doc.Stage,
		Metadata:         unmarshalMeta(doc.Metadata),
		AvailableActions: actions,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func (s *documentServiceImpl) lock(id int64) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &docLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func marshalMeta(md map[string]string) string {
	b, err := json.Marshal(md)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func unmarshalMeta(raw string) map[string]string {
	md := map[string]string{}
	if raw == "" {
		return md
	}
	_ = json.Unmarshal([]byte(raw), &md)
	return md
}
