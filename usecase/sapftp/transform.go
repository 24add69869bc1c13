package sapftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

const (
	headerColumnCount = 10

	colHeaderID  = "Header ID"
	colLineID    = "Line ID"
	colSalePrice = "Sale Price"
	colCostPrice = "Cost Price"

	outputSuffix = "_FTP.csv"
)

var errNoBlobStore = errors.New("blob storage is not configured")

// Transform converts an SAP export workbook into FTP upload lines and stores
// them as <base>_FTP.csv. It returns the stored file name.
func (u *sapFtpUsecase) Transform(ctx context.Context, filename string, export io.Reader) (string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return "", fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, filename)
	}
	if u.blob == nil {
		return "", errNoBlobStore
	}

	rows, err := readSheet(export)
	if err != nil {
		return "", err
	}
	lines, err := TransformRows(rows)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + outputSuffix
	content := []byte(strings.Join(lines, "\n") + "\n")
	if err := u.blob.Upload(ctx, name, content, "text/csv"); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}

	log.Infof("[SapFtp] Stored %s with %d lines", name, len(lines))
	return name, nil
}

func (u *sapFtpUsecase) Download(ctx context.Context, filename string) ([]byte, error) {
	if u.blob == nil {
		return nil, errNoBlobStore
	}
	name := filepath.Base(filename)
	if !strings.HasSuffix(name, outputSuffix) {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, filename)
	}
	return u.blob.Download(ctx, name)
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	return rows, nil
}

type headerRecord struct {
	id     string
	values []string
}

// TransformRows builds "H;..." header lines each followed by its "L;..." lines.
// rows[0] is the column header row.
func TransformRows(rows [][]string) ([]string, error) {
	if len(rows) == 0 {
		return nil, &entity.ValidationError{Problems: []string{"SAP export is empty"}}
	}
	columns := trimAll(rows[0])
	if len(columns) <= headerColumnCount {
		return nil, &entity.ValidationError{
			Actual:   columns,
			Problems: []string{fmt.Sprintf("SAP export needs more than %d columns", headerColumnCount)},
		}
	}

	headerIdx := indexOf(columns[:headerColumnCount], colHeaderID)
	lineIdx := indexOf(columns[headerColumnCount:], colLineID)
	var problems []string
	if headerIdx < 0 {
		problems = append(problems, fmt.Sprintf("missing %q in the first %d columns", colHeaderID, headerColumnCount))
	}
	if lineIdx < 0 {
		problems = append(problems, fmt.Sprintf("missing %q after the first %d columns", colLineID, headerColumnCount))
	}
	if len(problems) > 0 {
		return nil, &entity.ValidationError{Actual: columns, Problems: problems}
	}
	priceCols := priceColumns(columns)

	var headers []headerRecord
	seenHeaders := make(map[string]string)
	conflicts := make(map[string]struct{})
	linesByID := make(map[string][][]string)

	for _, raw := range rows[1:] {
		row := padRow(raw, len(columns))
		if isBlank(row) {
			continue
		}
		for _, i := range priceCols {
			row[i] = roundPrice(row[i])
		}

		header := row[:headerColumnCount]
		line := row[headerColumnCount:]
		id := header[headerIdx]

		tuple := strings.Join(header, "\x1f")
		if prev, ok := seenHeaders[id]; ok {
			if prev != tuple {
				conflicts[id] = struct{}{}
			}
		} else {
			seenHeaders[id] = tuple
			headers = append(headers, headerRecord{id: id, values: header})
		}

		lineID := line[lineIdx]
		linesByID[lineID] = append(linesByID[lineID], line)
	}

	if len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for id := range conflicts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, &entity.MergeError{Source: "SAP export header ids", Keys: ids}
	}

	out := make([]string, 0, len(rows))
	for _, h := range headers {
		out = append(out, formatLine("H", h.values, headerIdx))
		for _, line := range linesByID[h.id] {
			out = append(out, formatLine("L", line, lineIdx))
		}
	}
	return out, nil
}

// formatLine joins values with ";" after the record type, dropping the id column.
func formatLine(kind string, values []string, skip int) string {
	parts := make([]string, 0, len(values))
	parts = append(parts, kind)
	for i, v := range values {
		if i == skip {
			continue
		}
		if strings.Contains(v, ",") {
			v = `"` + v + `"`
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, ";")
}

func priceColumns(columns []string) []int {
	var idx []int
	for i, c := range columns {
		if c == colSalePrice || c == colCostPrice {
			idx = append(idx, i)
		}
	}
	return idx
}

// roundPrice keeps two decimals; values that are not numbers become empty.
func roundPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return ""
	}
	return d.RoundBank(consts.CostPrecision).String()
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, trimAll(row))
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
