package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/domain/entity"
)

func TestWriteHistoryReport(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &entity.Document{
		PublicID:    "pub-1",
		Title:       "On Typestates",
		AuthorID:    "ada",
		Stage:       "PUBLISHED",
		PublishedAt: &published,
	}
	history := []*entity.TransitionHistory{
		{ActorID: "ada", NewStage: "DRAFT", Trigger: "CREATE", Timestamp: published.Add(-2 * time.Hour)},
		{ActorID: "ada", PreviousStage: "DRAFT", NewStage: "IN_REVIEW", Trigger: "SUBMIT", Timestamp: published.Add(-time.Hour)},
		{ActorID: "ron", PreviousStage: "IN_REVIEW", NewStage: "SECOND_REVIEW", Trigger: "APPROVE", Note: "looks good", Timestamp: published},
	}

	outputPath := filepath.Join(t.TempDir(), "history_pub-1.xlsx")
	w := NewExcelWriter(zap.NewNop())
	require.NoError(t, w.WriteHistoryReport(doc, history, outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "On Typestates", title)

	stage, err := f.GetCellValue(sheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", stage)

	action, err := f.GetCellValue(sheetName, "C10")
	require.NoError(t, err)
	assert.Equal(t, "APPROVE", action)

	note, err := f.GetCellValue(sheetName, "F10")
	require.NoError(t, err)
	assert.Equal(t, "looks good", note)
}

func TestWriteHistoryReport_BadPath(t *testing.T) {
	w := NewExcelWriter(zap.NewNop())
	err := w.WriteHistoryReport(&entity.Document{PublicID: "pub-1"}, nil,
		filepath.Join(t.TempDir(), "missing", "sub", "dir", "out.xlsx"))
	assert.Error(t, err)
}
