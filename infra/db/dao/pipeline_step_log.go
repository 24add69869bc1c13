package dao

import (
	"fmt"

	"github.com/radhian/billing-reconciliation/infra/db/model"
)

func (d *dao) CreatePipelineStepLog(payload *model.PipelineStepLog) error {
	if err := d.db.Create(payload).Error; err != nil {
		return fmt.Errorf("failed to save step log: %v", err)
	}
	return nil
}

func (d *dao) GetPipelineStepLogsSince(createTime int64) ([]model.PipelineStepLog, error) {
	var logs []model.PipelineStepLog
	if err := d.db.
		Where("create_time >= ?", createTime).
		Order("create_time ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch step logs: %w", err)
	}
	return logs, nil
}

func (d *dao) GetLatestPipelineStepLog(step string, status int) (model.PipelineStepLog, bool, error) {
	var logEntry model.PipelineStepLog
	res := d.db.
		Where("step = ? AND status = ?", step, status).
		Order("create_time DESC, id DESC").
		First(&logEntry)
	if res.RecordNotFound() {
		return logEntry, false, nil
	}
	if res.Error != nil {
		return logEntry, false, fmt.Errorf("failed to fetch latest %s log: %w", step, res.Error)
	}
	return logEntry, true, nil
}
