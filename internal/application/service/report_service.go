package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/presslane/docflow/internal/application/port"
)

// ReportService renders a document's transition history into a workbook
// for editorial back-office review
type ReportService interface {
	GenerateHistoryReport(ctx context.Context, documentID int64) (string, error)
}

type reportServiceImpl struct {
	docRepo     port.DocumentRepository
	historyRepo port.HistoryRepository
	writer      port.ReportWriter
	outputDir   string
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	docRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	writer port.ReportWriter,
	outputDir string,
	logger Logger,
) ReportService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &reportServiceImpl{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		writer:      writer,
		outputDir:   outputDir,
		logger:      logger,
	}
}

// GenerateHistoryReport writes the history workbook and returns its path
func (s *reportServiceImpl) GenerateHistoryReport(ctx context.Context, documentID int64) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	history, err := s.historyRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get history: %w", err)
	}

	outputPath := filepath.Join(s.outputDir, fmt.Sprintf("history_%s.xlsx", doc.PublicID))
	if err := s.writer.WriteHistoryReport(doc, history, outputPath); err != nil {
		s.logger.Error("Failed to write history report", "document_id", documentID, "error", err)
		return "", fmt.Errorf("write report: %w", err)
	}

	s.logger.Info("History report written",
		"document_id", documentID,
		"path", outputPath,
		"transitions", len(history),
	)
	return outputPath, nil
}
