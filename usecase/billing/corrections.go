package billing

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

// rowProblems collects per-row value errors so one response lists all of them.
type rowProblems struct {
	errs *multierror.Error
}

func (p *rowProblems) add(line int, format string, args ...any) {
	p.errs = multierror.Append(p.errs, fmt.Errorf("row %d: %s", line, fmt.Sprintf(format, args...)))
}

func (p *rowProblems) validationError(expected, actual []string) error {
	if p.errs.ErrorOrNil() == nil {
		return nil
	}
	problems := make([]string, 0, len(p.errs.Errors))
	for _, err := range p.errs.Errors {
		problems = append(problems, err.Error())
	}
	return &entity.ValidationError{Expected: expected, Actual: actual, Problems: problems}
}

func loadUpload(filename string, upload io.Reader, expected []string) (entity.RawExtract, error) {
	raw, err := readUpload(filename, upload)
	if err != nil {
		return raw, err
	}
	if err := requireHeader(raw, expected); err != nil {
		return raw, err
	}
	return raw, nil
}

func parseExceptionTable(filename string, upload io.Reader) (entity.ExceptionTable, error) {
	raw, err := loadUpload(filename, upload, consts.ExceptionHeaders)
	if err != nil {
		return entity.ExceptionTable{}, err
	}

	var problems rowProblems
	table := entity.ExceptionTable{Rows: make([]entity.ExceptionRow, 0, len(raw.Rows))}
	for i, row := range raw.Rows {
		line := i + 2
		sapID, ok := utils.ParseSapID(cell(row, 0))
		if !ok {
			problems.add(line, "invalid %s %q", consts.HeaderSapID, cell(row, 0))
		}
		account, accountOK := utils.NormalizeAccountID(cell(row, 1))
		if !accountOK {
			problems.add(line, "invalid %s %q", consts.HeaderAccount, cell(row, 1))
		}
		if ok && accountOK {
			table.Rows = append(table.Rows, entity.ExceptionRow{SapID: sapID, Account: account})
		}
	}
	if err := problems.validationError(consts.ExceptionHeaders, raw.Header); err != nil {
		return entity.ExceptionTable{}, err
	}
	return table, nil
}

func parseCreditTable(filename string, upload io.Reader) (entity.CreditTable, error) {
	raw, err := loadUpload(filename, upload, consts.CreditHeaders)
	if err != nil {
		return entity.CreditTable{}, err
	}

	var problems rowProblems
	table := entity.CreditTable{Rows: make([]entity.CreditRow, 0, len(raw.Rows))}
	for i, row := range raw.Rows {
		line := i + 2
		account, accountOK := utils.NormalizeAccountID(cell(row, 0))
		if !accountOK {
			problems.add(line, "invalid %s %q", consts.HeaderAccount, cell(row, 0))
		}
		credit, creditOK := parseCredit(cell(row, 1))
		if !creditOK {
			problems.add(line, "invalid %s %q", consts.HeaderCredit, cell(row, 1))
		}
		if accountOK && creditOK {
			table.Rows = append(table.Rows, entity.CreditRow{Account: account, Credit: credit})
		}
	}
	if err := problems.validationError(consts.CreditHeaders, raw.Header); err != nil {
		return entity.CreditTable{}, err
	}
	return table, nil
}

// parseCredit accepts a non-negative amount with at most cent precision.
// Sub-cent credits would be absorbed by cost rounding without changing any row.
func parseCredit(raw string) (decimal.Decimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, false
	}
	credit, err := utils.ParseAmount(raw)
	if err != nil || credit.IsNegative() {
		return decimal.Zero, false
	}
	if !credit.Equal(credit.Truncate(consts.CostPrecision)) {
		return decimal.Zero, false
	}
	return credit, true
}

// parsePOTable coerces uncoercible cells to nil; such rows never match.
func parsePOTable(filename string, upload io.Reader) (entity.POTable, error) {
	raw, err := loadUpload(filename, upload, consts.POHeaders)
	if err != nil {
		return entity.POTable{}, err
	}

	seen := make(map[string]struct{}, len(raw.Rows))
	byKey := make(map[string]entity.PORow, len(raw.Rows))
	conflicts := make(map[string]struct{})
	table := entity.POTable{Rows: make([]entity.PORow, 0, len(raw.Rows))}

	for _, row := range raw.Rows {
		po := entity.PORow{
			PO:          utils.StringPtr(cell(row, 2)),
			POCondition: utils.StringPtr(cell(row, 3)),
		}
		if sapID, ok := utils.ParseSapID(cell(row, 0)); ok {
			po.ResellerSapID = utils.Int64Ptr(sapID)
		}
		if account, ok := utils.NormalizeAccountID(cell(row, 1)); ok {
			po.EndCustomer = &account
		}

		full := poRowKey(po)
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		table.Rows = append(table.Rows, po)

		if po.ResellerSapID == nil || po.EndCustomer == nil {
			continue
		}
		join := joinKey(*po.ResellerSapID, *po.EndCustomer)
		if _, exists := byKey[join]; exists {
			conflicts[join] = struct{}{}
			continue
		}
		byKey[join] = po
	}

	if len(conflicts) > 0 {
		return entity.POTable{}, &entity.MergeError{Source: "PO upload", Keys: sortedKeys(conflicts)}
	}
	return table, nil
}

func parseConsolidationTable(filename string, upload io.Reader) (entity.ConsolidationTable, error) {
	raw, err := loadUpload(filename, upload, consts.ConsolidationHeaders)
	if err != nil {
		return entity.ConsolidationTable{}, err
	}

	var problems rowProblems
	rows := make([]entity.ConsolidationRow, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		line := i + 2
		sapID, ok := utils.ParseSapID(cell(row, 0))
		if !ok {
			problems.add(line, "invalid %s %q", consts.HeaderSapID, cell(row, 0))
		}
		condition, conditionOK := normalizeCreationCondition(cell(row, 1))
		if !conditionOK {
			problems.add(line, "invalid %s %q", consts.HeaderConditionCreation, cell(row, 1))
		}
		if ok && conditionOK {
			rows = append(rows, entity.ConsolidationRow{SapID: sapID, CreationCondition: condition})
		}
	}
	if err := problems.validationError(consts.ConsolidationHeaders, raw.Header); err != nil {
		return entity.ConsolidationTable{}, err
	}
	return dedupeConsolidation(rows, "consolidation upload")
}

// dedupeConsolidation drops exact duplicates and rejects a SAP id tagged with two conditions.
func dedupeConsolidation(rows []entity.ConsolidationRow, source string) (entity.ConsolidationTable, error) {
	bySap := make(map[int64]string, len(rows))
	conflicts := make(map[string]struct{})
	table := entity.ConsolidationTable{Rows: make([]entity.ConsolidationRow, 0, len(rows))}

	for _, row := range rows {
		if prev, exists := bySap[row.SapID]; exists {
			if prev != row.CreationCondition {
				conflicts[fmt.Sprintf("%d", row.SapID)] = struct{}{}
			}
			continue
		}
		bySap[row.SapID] = row.CreationCondition
		table.Rows = append(table.Rows, row)
	}

	if len(conflicts) > 0 {
		return entity.ConsolidationTable{}, &entity.MergeError{Source: source, Keys: sortedKeys(conflicts)}
	}
	return table, nil
}

func normalizeCreationCondition(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case consts.CreationByReseller:
		return consts.CreationByReseller, true
	case consts.CreationByEndCustomer:
		return consts.CreationByEndCustomer, true
	default:
		return "", false
	}
}

func poRowKey(row entity.PORow) string {
	sap := "<nil>"
	if row.ResellerSapID != nil {
		sap = fmt.Sprintf("%d", *row.ResellerSapID)
	}
	return strings.Join([]string{sap, derefOrNil(row.EndCustomer), derefOrNil(row.PO), derefOrNil(row.POCondition)}, "\x1f")
}

func joinKey(sapID int64, account string) string {
	return fmt.Sprintf("%d/%s", sapID, account)
}

func derefOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
