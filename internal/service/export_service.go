package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
)

var ErrExportGenerateFail = apperr.New(apperr.KindInternal, "Failed to generate export file")

// ExportService spreadsheet reports.
type ExportService interface {
	// ExportDocuments writes the doctor's course documents to an xlsx workbook
	// and returns it with a suggested filename.
	ExportDocuments(ctx context.Context, d Doctor) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

var exportColumns = []struct {
	title string
	width float64
}{
	{"Title", 32},
	{"Type", 18},
	{"Course", 12},
	{"Student", 24},
	{"Student ID", 14},
	{"Status", 12},
	{"Created", 22},
	{"Reviewed", 22},
	{"File", 40},
}

// ═══════════════════════════════════════════════════════════
// ExportDocuments
// ═══════════════════════════════════════════════════════════
//
// Layout: row 1 title, row 2 header, one row per document (newest first).
// A doctor without courses gets a workbook with headers only.

func (s *exportService) ExportDocuments(ctx context.Context, d Doctor) (*bytes.Buffer, string, error) {
	docs, err := s.repo.Document.List(ctx, repository.DocumentFilter{
		Courses:   d.Courses(),
		WithOwner: true,
	})
	if err != nil {
		s.logger.Error("list documents for export failed", zap.Error(err))
		return nil, "", err
	}

	account := d.Account()

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Documents"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, col := range exportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, col.width)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	lastCol, _ := excelize.ColumnNumberToName(len(exportColumns))
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Documents for %s (%s)", account.FullName(), s.now().UTC().Format("2006-01-02")))
	f.MergeCell(sheet, "A1", lastCol+"1")

	for i, col := range exportColumns {
		c, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, c, col.title)
	}
	f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle)

	for i := range docs {
		row := i + 3
		values := documentRow(&docs[i])
		for j, v := range values {
			c, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, c, v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", apperr.Wrap(ErrExportGenerateFail, err)
	}

	filename := fmt.Sprintf("documents_%s_%s.xlsx", account.UserID, s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

func documentRow(doc *model.Document) []interface{} {
	student, studentID := "", ""
	if doc.Owner != nil {
		student = doc.Owner.FullName()
		studentID = doc.Owner.UserID
	}
	reviewed := ""
	if doc.ReviewedAt != nil {
		reviewed = formatTime(*doc.ReviewedAt)
	}
	return []interface{}{
		doc.Title,
		string(doc.Type),
		doc.Course,
		student,
		studentID,
		string(doc.Status),
		formatTime(doc.CreatedAt),
		reviewed,
		keyOf(doc.FileURL),
	}
}
