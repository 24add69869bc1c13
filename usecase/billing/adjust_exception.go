package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

func (u *billingUsecase) ApplyException(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error) {
	return u.runAdjustment(ctx, consts.StepException, operator, func() (applyFunc, error) {
		table, err := parseExceptionTable(filename, upload)
		if err != nil {
			return nil, err
		}
		return func(report entity.BillingReport, _ entity.WorkflowMetadata) (entity.BillingReport, string, error) {
			report, changed := applyExceptions(report, table)
			return report, fmt.Sprintf("Exceptions applied: %d rows reassigned from %d overrides", changed, len(table.Rows)), nil
		}, nil
	})
}

// applyExceptions overrides sap_id by account. Later rows for the same account win.
func applyExceptions(report entity.BillingReport, table entity.ExceptionTable) (entity.BillingReport, int) {
	overrides := make(map[string]int64, len(table.Rows))
	for _, row := range table.Rows {
		overrides[row.Account] = row.SapID
	}

	changed := 0
	for i := range report {
		sapID, ok := overrides[report[i].AccountID]
		if !ok {
			continue
		}
		report[i].SapID = utils.Int64Ptr(sapID)
		changed++
	}
	return report, changed
}
