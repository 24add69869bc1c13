package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/entity"
	"github.com/radhian/billing-reconciliation/utils"
)

// applyFunc rewrites a copy of the snapshot and describes what it changed.
type applyFunc func(report entity.BillingReport, meta entity.WorkflowMetadata) (entity.BillingReport, string, error)

// runAdjustment validates the input via prepare without holding the lock, then
// applies the step to the snapshot under the lock. On any failure the stored
// snapshot is left as it was.
func (u *billingUsecase) runAdjustment(ctx context.Context, step, operator string, prepare func() (applyFunc, error)) (summary entity.StepSummary, err error) {
	runID := uuid.NewString()
	summary.RunID = runID

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[%s] Panic recovered for run %s: %v", step, runID, r)
			err = fmt.Errorf("%s step aborted: %v", step, r)
		}
		u.recordStep(runID, step, operator, summary, err)
	}()

	apply, err := prepare()
	if err != nil {
		log.Warnf("[%s] Rejected input for run %s: %v", step, runID, err)
		return summary, err
	}

	lock, err := u.obtainSnapshotLock(ctx, runID)
	if err != nil {
		return summary, err
	}
	defer u.releaseSnapshotLock(lock, runID)

	report, err := u.store.LoadSnapshot(ctx)
	if err != nil {
		return summary, err
	}
	meta, err := u.store.LoadMetadata(ctx)
	if err != nil {
		return summary, err
	}

	updated, message, err := apply(report.Clone(), meta)
	if err != nil {
		return summary, err
	}
	if err := u.store.SaveSnapshot(ctx, updated); err != nil {
		return summary, fmt.Errorf("failed to save billing report: %w", err)
	}

	summary = buildSummary(runID, message, meta.Country, updated)
	log.Infof("[%s] Run %s done: %s", step, runID, message)
	return summary, nil
}

func buildSummary(runID, message, country string, report entity.BillingReport) entity.StepSummary {
	seller, customer := report.Totals()
	return entity.StepSummary{
		RunID:       runID,
		Message:     message,
		Country:     country,
		SellerSum:   utils.RoundCost(seller),
		CustomerSum: utils.RoundCost(customer),
	}
}
