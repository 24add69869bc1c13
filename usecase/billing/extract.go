package billing

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

type columnRule struct {
	pattern   *regexp.Regexp
	canonical string
}

// currencyRules rename "Seller Cost (EUR)" style headers to their canonical names.
var currencyRules = buildCurrencyRules()

func buildCurrencyRules() []columnRule {
	codes := strings.Join(consts.CurrencyCodes, "|")
	rules := make([]columnRule, 0, 2)
	for _, canonical := range []string{consts.CountryColSellerCost, consts.CountryColCustomerCost} {
		pattern := fmt.Sprintf(`(?i)^\s*%s\s*\((?:%s)\)\s*$`, regexp.QuoteMeta(canonical), codes)
		rules = append(rules, columnRule{pattern: regexp.MustCompile(pattern), canonical: canonical})
	}
	return rules
}

// parseExtract reads the CSV payload returned by the report API. Extract
// headers are matched by name, so surrounding whitespace is dropped.
func parseExtract(payload string) (entity.RawExtract, error) {
	raw, err := readCSV(strings.NewReader(payload))
	if err != nil {
		return entity.RawExtract{}, err
	}
	for i, h := range raw.Header {
		raw.Header[i] = strings.TrimSpace(h)
	}
	return raw, nil
}

func readCSV(r io.Reader) (entity.RawExtract, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return entity.RawExtract{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	return toExtract(records), nil
}

// toExtract splits the header from the data rows and drops fully blank rows.
// Header cells are kept verbatim apart from a leading BOM.
func toExtract(records [][]string) entity.RawExtract {
	if len(records) == 0 {
		return entity.RawExtract{}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return entity.RawExtract{Header: header, Rows: rows}
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeCurrencyColumns renames currency-suffixed cost columns in place.
func normalizeCurrencyColumns(raw entity.RawExtract) entity.RawExtract {
	for i, h := range raw.Header {
		for _, rule := range currencyRules {
			if rule.pattern.MatchString(h) {
				raw.Header[i] = rule.canonical
				break
			}
		}
	}
	return raw
}

// requireColumns resolves the index of every required column.
func requireColumns(source string, raw entity.RawExtract, required []string) (map[string]int, error) {
	index := make(map[string]int, len(raw.Header))
	for i, h := range raw.Header {
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, fmt.Sprintf("%s is missing column %q", source, col))
		}
	}
	if len(missing) > 0 {
		return nil, &entity.ValidationError{Expected: required, Actual: raw.Header, Problems: missing}
	}
	return index, nil
}

// cell returns the trimmed value at i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
