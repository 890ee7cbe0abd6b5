package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/domain/entity"
)

const sheetName = "History"

// ExcelWriter renders a document's transition history to an xlsx workbook
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel report writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// WriteHistoryReport writes one workbook with a summary block and one row
// per recorded transition
func (w *ExcelWriter) WriteHistoryReport(doc *entity.Document, history []*entity.TransitionHistory, outputPath string) error {
	w.logger.Info("Writing history report",
		zap.String("document", doc.PublicID),
		zap.Int("transitions", len(history)))

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		w.logger.Warn("Failed to drop default sheet", zap.Error(err))
	}

	// Summary block
	w.setCell(f, "A1", "Document")
	w.setCell(f, "B1", doc.Title)
	w.setCell(f, "A2", "Public ID")
	w.setCell(f, "B2", doc.PublicID)
	w.setCell(f, "A3", "Author")
	w.setCell(f, "B3", doc.AuthorID)
	w.setCell(f, "A4", "Current stage")
	w.setCell(f, "B4", doc.Stage)
	if doc.PublishedAt != nil {
		w.setCell(f, "A5", "Published at")
		w.setCell(f, "B5", doc.PublishedAt.Format("2006-01-02 15:04:05"))
	}

	// Transition table
	headers := []string{"Timestamp", "Actor", "Action", "From", "To", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 7)
		w.setCell(f, cell, h)
	}

	for rowIdx, h := range history {
		row := 8 + rowIdx
		values := []string{
			h.Timestamp.Format("2006-01-02 15:04:05"),
			h.ActorID,
			h.Trigger,
			h.PreviousStage,
			h.NewStage,
			h.Note,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			w.setCell(f, cell, v)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("History report written", zap.String("output_path", outputPath))
	return nil
}

// setCell sets a cell value in the workbook
func (w *ExcelWriter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
