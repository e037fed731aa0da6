package report

import (
	"os"
	"path/filepath"

	"sjsage522/newsworker/internal/crawler"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// DateLayout is how article dates are written (MM-DD-YYYY)
const DateLayout = "01-02-2006"

const sheetName = "Sheet1"

// Columns is the report header row
var Columns = []string{
	"title",
	"description",
	"date",
	"words in title",
	"words in description",
	"contains money related news",
	"image",
}

// Row returns the report cells of an article in column order
func Row(a crawler.Article) []interface{} {
	return []interface{}{
		a.Title,
		a.Description,
		a.Date.Format(DateLayout),
		a.TitleCount,
		a.DescriptionCount,
		a.HasMoney,
		a.ImagePath,
	}
}

// Record returns the report cells of an article keyed by column name
func Record(a crawler.Article) map[string]interface{} {
	row := Row(a)
	record := make(map[string]interface{}, len(Columns))
	for i, column := range Columns {
		record[column] = row[i]
	}
	return record
}

// ExcelWriter writes articles into a spreadsheet
type ExcelWriter struct {
	Dir  string
	File string
	log  *logger.Logger
}

// NewExcelWriter creates a writer saving to dir/file
func NewExcelWriter(dir, file string) *ExcelWriter {
	return &ExcelWriter{
		Dir:  dir,
		File: file,
		log:  logger.ForReport(),
	}
}

// Path is where the report is saved
func (w *ExcelWriter) Path() string {
	return filepath.Join(w.Dir, w.File)
}

// Write saves articles as a fresh workbook and returns its path.
// Nothing is written for an empty result and the path is "".
func (w *ExcelWriter) Write(articles []crawler.Article) (string, error) {
	if len(articles) == 0 {
		w.log.Info().Msg("No articles, report not written")
		return "", nil
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Columns))
	for i, column := range Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", errors.NewReport("excel", "failed to write header", err)
	}

	for i, article := range articles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", errors.NewReport("excel", "invalid row", err)
		}
		row := Row(article)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", errors.NewReport("excel", "failed to write row "+cell, err)
		}
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", errors.NewReport("excel", "failed to create "+w.Dir, err)
	}

	target := w.Path()
	if err := f.SaveAs(target); err != nil {
		return "", errors.NewReport("excel", "failed to save "+target, err)
	}

	w.log.Info().Str("path", target).Int("rows", len(articles)).Msg("Report written")
	return target, nil
}
