package billing

import (
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/infra/db/model"
	"github.com/radhian/billing-reconciliation/utils"
)

// recordStep writes one step log row. Logging failures never fail the step.
func (u *billingUsecase) recordStep(runID, step, operator string, summary entity.StepSummary, stepErr error) {
	if u.dao == nil {
		return
	}
	if strings.TrimSpace(operator) == "" {
		operator = consts.DefaultOperator
	}

	entry := &model.PipelineStepLog{
		RunID:       runID,
		Step:        step,
		Status:      consts.StatusSucceeded,
		Message:     summary.Message,
		Country:     summary.Country,
		SellerSum:   utils.FormatCost(summary.SellerSum),
		CustomerSum: utils.FormatCost(summary.CustomerSum),
		CreateTime:  u.now().Unix(),
		CreateBy:    operator,
	}
	if stepErr != nil {
		entry.Status = consts.StatusFailed
		entry.Message = stepErr.Error()
	}

	if err := u.dao.CreatePipelineStepLog(entry); err != nil {
		log.Errorf("[StepLog] Failed to record %s run %s: %v", step, runID, err)
	}
}
