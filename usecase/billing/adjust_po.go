package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

func (u *billingUsecase) ApplyPO(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error) {
	return u.runAdjustment(ctx, consts.StepPO, operator, func() (applyFunc, error) {
		table, err := parsePOTable(filename, upload)
		if err != nil {
			return nil, err
		}
		return func(report entity.BillingReport, _ entity.WorkflowMetadata) (entity.BillingReport, string, error) {
			report, tagged := applyPOs(report, table)
			return report, fmt.Sprintf("PO data applied: %d of %d rows tagged", tagged, len(report)), nil
		}, nil
	})
}

// applyPOs sets PO fields on rows matching (sap_id, account) and clears them
// elsewhere, so reapplying the same table gives the same report.
func applyPOs(report entity.BillingReport, table entity.POTable) (entity.BillingReport, int) {
	byKey := make(map[string]entity.PORow, len(table.Rows))
	for _, row := range table.Rows {
		if row.ResellerSapID == nil || row.EndCustomer == nil {
			continue
		}
		byKey[joinKey(*row.ResellerSapID, *row.EndCustomer)] = row
	}

	tagged := 0
	for i := range report {
		report[i].PO, report[i].POCondition = nil, nil
		if report[i].SapID == nil {
			continue
		}
		row, ok := byKey[joinKey(*report[i].SapID, report[i].AccountID)]
		if !ok {
			continue
		}
		report[i].PO = utils.StringPtr(utils.Deref(row.PO))
		report[i].POCondition = utils.StringPtr(utils.Deref(row.POCondition))
		tagged++
	}
	return report, tagged
}
