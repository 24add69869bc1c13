package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

func (u *billingUsecase) ApplyCredit(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error) {
	return u.runAdjustment(ctx, consts.StepCredit, operator, func() (applyFunc, error) {
		table, err := parseCreditTable(filename, upload)
		if err != nil {
			return nil, err
		}
		return func(report entity.BillingReport, _ entity.WorkflowMetadata) (entity.BillingReport, string, error) {
			report, seller, customer := applyCredits(report, table)
			return report, fmt.Sprintf("Credits applied: seller cost reduced by %s, customer cost reduced by %s",
				utils.FormatCost(seller), utils.FormatCost(customer)), nil
		}, nil
	})
}

// applyCredits deducts each account's credit from its rows in report order,
// never taking a cost below zero. Seller and customer cost are drawn down
// independently from the same credit amount. Leftover credit is discarded.
func applyCredits(report entity.BillingReport, table entity.CreditTable) (entity.BillingReport, decimal.Decimal, decimal.Decimal) {
	rowsByAccount := make(map[string][]int)
	for i, rec := range report {
		rowsByAccount[rec.AccountID] = append(rowsByAccount[rec.AccountID], i)
	}

	sellerDeducted, customerDeducted := decimal.Zero, decimal.Zero
	for _, credit := range table.Rows {
		rows := rowsByAccount[credit.Account]
		sellerDeducted = sellerDeducted.Add(drawDown(report, rows, credit.Credit, sellerCost))
		customerDeducted = customerDeducted.Add(drawDown(report, rows, credit.Credit, customerCost))
	}
	return report, sellerDeducted, customerDeducted
}

func sellerCost(rec *entity.BillingRecord) *decimal.Decimal   { return &rec.SellerCost }
func customerCost(rec *entity.BillingRecord) *decimal.Decimal { return &rec.CustomerCost }

func drawDown(report entity.BillingReport, rows []int, credit decimal.Decimal, field func(*entity.BillingRecord) *decimal.Decimal) decimal.Decimal {
	remaining := credit
	for _, i := range rows {
		if !remaining.IsPositive() {
			break
		}
		cost := field(&report[i])
		if !cost.IsPositive() {
			continue
		}
		deduct := decimal.Min(remaining, *cost)
		*cost = utils.RoundCost(cost.Sub(deduct))
		remaining = remaining.Sub(deduct)
	}
	return credit.Sub(remaining)
}
