package billing

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/radhian/billing-reconciliation/entity"
)

// readUpload decodes an operator upload by file extension.
func readUpload(filename string, r io.Reader) (entity.RawExtract, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readWorkbook(r)
	default:
		return entity.RawExtract{}, fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, filename)
	}
}

// readWorkbook reads the first sheet of an .xlsx workbook.
func readWorkbook(r io.Reader) (entity.RawExtract, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return entity.RawExtract{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return entity.RawExtract{}, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	return toExtract(rows), nil
}

// requireHeader checks the upload columns are exactly the expected ones, in order.
func requireHeader(raw entity.RawExtract, expected []string) error {
	if slices.Equal(raw.Header, expected) {
		return nil
	}
	return &entity.ValidationError{
		Expected: expected,
		Actual:   raw.Header,
	}
}
