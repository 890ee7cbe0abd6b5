package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/presslane/docflow/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	documentService service.DocumentService
	reportService   service.ReportService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	documentService service.DocumentService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		documentService: documentService,
		reportService:   reportService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// AppendTextRequest carries the text appended to a draft
type AppendTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ReviewRequest identifies the reviewer taking a decision
type ReviewRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Note       string `json:"note"`
}

// ContentResponse carries published document content
type ContentResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// ReportResponse carries the path of a generated history workbook
type ReportResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// ListDocumentsRequest represents query parameters for listing documents
type ListDocumentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateDocument handles POST /api/v1/documents
func (h *Handlers) CreateDocument(c *gin.Context) {
	var in service.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, err := h.documentService.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "failed to create document")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: view})
}

// ListDocuments handles GET /api/v1/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	var req ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	views, err := h.documentService.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err, "failed to list documents")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: views})
}

// GetDocument handles GET /api/v1/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	view, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get document")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// GetContent handles GET /api/v1/documents/:id/content. Content is only
// readable once the document is published.
func (h *Handlers) GetContent(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	content, err := h.documentService.Content(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to read content")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: ContentResponse{ID: id, Content: content}})
}

// GetHistory handles GET /api/v1/documents/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	history, err := h.documentService.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get history")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// GenerateReport handles GET /api/v1/documents/:id/report
func (h *Handlers) GenerateReport(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	path, err := h.reportService.GenerateHistoryReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to generate report")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: ReportResponse{ID: id, Path: path}})
}

// AppendText handles POST /api/v1/documents/:id/text
func (h *Handlers) AppendText(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	var req AppendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, err := h.documentService.AppendText(c.Request.Context(), id, req.Text)
	if err != nil {
		h.respondError(c, err, "failed to append text")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SubmitForReview handles POST /api/v1/documents/:id/submit
func (h *Handlers) SubmitForReview(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	view, err := h.documentService.SubmitForReview(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to submit document")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// ApproveDocument handles POST /api/v1/documents/:id/approve
func (h *Handlers) ApproveDocument(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, err := h.documentService.Approve(c.Request.Context(), id, req.ReviewerID)
	if err != nil {
		h.respondError(c, err, "failed to approve document")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RejectDocument handles POST /api/v1/documents/:id/reject
func (h *Handlers) RejectDocument(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	view, err := h.documentService.Reject(c.Request.Context(), id, req.ReviewerID, req.Note)
	if err != nil {
		h.respondError(c, err, "failed to reject document")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// CopyEdit handles POST /api/v1/documents/:id/copyedit
func (h *Handlers) CopyEdit(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	suggestions, err := h.documentService.CopyEdit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to copy edit document")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: suggestions})
}

// documentID parses the :id path parameter, writing a 400 when invalid
func (h *Handlers) documentID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid document ID"})
		return 0, false
	}
	return id, true
}

// isValidationError reports whether err came from input validation
func isValidationError(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return true
	}
	var verr validation.ErrorObject
	return errors.As(err, &verr)
}

// respondError maps application errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error, logMsg string) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStageConflict),
		errors.Is(err, service.ErrNotPublished):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrSelfApproval):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrCopyEditorUnavailable):
		status = http.StatusServiceUnavailable
	case isValidationError(err):
		status = http.StatusBadRequest
	default:
		message = "internal server error"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(logMsg, "error", err)
	}

	c.JSON(status, Response{Success: false, Error: message})
}
