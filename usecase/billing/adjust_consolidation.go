package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

func (u *billingUsecase) ApplyConsolidation(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error) {
	return u.runAdjustment(ctx, consts.StepConsolidation, operator, func() (applyFunc, error) {
		table, err := parseConsolidationTable(filename, upload)
		if err != nil {
			return nil, err
		}
		return consolidationStep(table), nil
	})
}

// ApplyConsolidationLookup tags every SAP id the customer master marks as end-customer created.
func (u *billingUsecase) ApplyConsolidationLookup(ctx context.Context, operator string) (entity.StepSummary, error) {
	return u.runAdjustment(ctx, consts.StepConsolidationLookup, operator, func() (applyFunc, error) {
		if u.dao == nil {
			return nil, &entity.ConfigError{Message: "SAP customer lookup is not configured"}
		}
		sapIDs, err := u.dao.GetSapIDsByCreationCondition(consts.CreationByEndCustomer)
		if err != nil {
			return nil, fmt.Errorf("failed to load SAP customers: %w", err)
		}
		rows := make([]entity.ConsolidationRow, 0, len(sapIDs))
		for _, id := range sapIDs {
			rows = append(rows, entity.ConsolidationRow{SapID: id, CreationCondition: consts.CreationByEndCustomer})
		}
		table, err := dedupeConsolidation(rows, "SAP customer lookup")
		if err != nil {
			return nil, err
		}
		return consolidationStep(table), nil
	})
}

func consolidationStep(table entity.ConsolidationTable) applyFunc {
	return func(report entity.BillingReport, _ entity.WorkflowMetadata) (entity.BillingReport, string, error) {
		report, tagged := applyConsolidation(report, table)
		return report, fmt.Sprintf("Consolidation applied: %d of %d rows created by end customer", tagged, len(report)), nil
	}
}

// applyConsolidation recomputes creation_condition for every row: the tagged
// condition when sap_id is in the table, otherwise creation by reseller.
func applyConsolidation(report entity.BillingReport, table entity.ConsolidationTable) (entity.BillingReport, int) {
	bySap := make(map[int64]string, len(table.Rows))
	for _, row := range table.Rows {
		bySap[row.SapID] = row.CreationCondition
	}

	endCustomer := 0
	for i := range report {
		condition := consts.CreationByReseller
		if report[i].SapID != nil {
			if tagged, ok := bySap[*report[i].SapID]; ok {
				condition = tagged
			}
		}
		report[i].CreationCondition = condition
		if condition == consts.CreationByEndCustomer {
			endCustomer++
		}
	}
	return report, endCustomer
}
