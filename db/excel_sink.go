package db

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"gen-data-go/models"
)

// Sink persists tabular data. Rows and columns are zero-based.
type Sink interface {
	AddSheet(name string) error
	WriteCell(sheet string, row, col int, value interface{}) error
	Save(path string) error
}

// ExcelSink is a Sink backed by an in-memory excelize workbook
type ExcelSink struct {
	file   *excelize.File
	sheets int
}

// NewExcelSink creates an empty workbook
func NewExcelSink() *ExcelSink {
	return &ExcelSink{file: excelize.NewFile()}
}

// AddSheet adds a sheet. The first call renames the workbook's default sheet
// so the saved file holds only the sheets added here.
func (s *ExcelSink) AddSheet(name string) error {
	if s.sheets == 0 {
		if err := s.file.SetSheetName(s.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", name, err)
		}
	} else {
		if _, err := s.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}
	s.sheets++
	return nil
}

// WriteCell sets a single cell value
func (s *ExcelSink) WriteCell(sheet string, row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("invalid cell (%d, %d): %w", row, col, err)
	}
	if err := s.file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// Save writes the workbook to path, overwriting any existing file
func (s *ExcelSink) Save(path string) error {
	if err := s.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	return nil
}

// WriteTo streams the workbook to w
func (s *ExcelSink) WriteTo(w io.Writer) (int64, error) {
	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	n, err := buf.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("failed to write workbook: %w", err)
	}
	return n, nil
}

// Close releases the workbook's temporary resources
func (s *ExcelSink) Close() error {
	return s.file.Close()
}

// WriteSheets adds every sheet to the sink and writes its header and rows
func WriteSheets(sink Sink, sheets []models.Sheet) error {
	for _, sheet := range sheets {
		if err := sink.AddSheet(sheet.Name); err != nil {
			return err
		}
		for col, name := range sheet.Header {
			if err := sink.WriteCell(sheet.Name, 0, col, name); err != nil {
				return err
			}
		}
		for i, row := range sheet.Rows {
			for col, value := range row {
				if err := sink.WriteCell(sheet.Name, i+1, col, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SaveWorkbook writes sheets into a new workbook saved at path
func SaveWorkbook(path string, sheets []models.Sheet) error {
	sink := NewExcelSink()
	defer func() {
		if err := sink.Close(); err != nil {
			logrus.Errorf("Error closing workbook: %v", err)
		}
	}()

	if err := WriteSheets(sink, sheets); err != nil {
		return err
	}
	return sink.Save(path)
}

// ReadWorkbook reads every sheet of an Excel stream into string rows
func ReadWorkbook(r io.Reader) (map[string][][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Errorf("Error closing excel file: %v", err)
		}
	}()

	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows from sheet %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, nil
}
