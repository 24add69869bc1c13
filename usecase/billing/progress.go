package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

// GetProgress lists the steps recorded since the last successful fetch.
func (u *billingUsecase) GetProgress(ctx context.Context) ([]entity.StepLogEntry, error) {
	if u.dao == nil {
		return nil, &entity.ConfigError{Message: "step log is not configured"}
	}

	last, found, err := u.dao.GetLatestPipelineStepLog(consts.StepFetch, consts.StatusSucceeded)
	if err != nil {
		return nil, err
	}
	if !found {
		return []entity.StepLogEntry{}, nil
	}

	logs, err := u.dao.GetPipelineStepLogsSince(last.CreateTime)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	entries := make([]entity.StepLogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, entity.StepLogEntry{
			RunID:       l.RunID,
			Step:        l.Step,
			Status:      l.Status,
			Message:     l.Message,
			Country:     l.Country,
			SellerSum:   parseSum(l.SellerSum),
			CustomerSum: parseSum(l.CustomerSum),
			Operator:    l.CreateBy,
			CreateTime:  time.Unix(l.CreateTime, 0).UTC(),
		})
	}
	return entries, nil
}

func parseSum(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
