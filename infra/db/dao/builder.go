package dao

import (
	"github.com/radhian/billing-reconciliation/infra/db/model"

	"github.com/jinzhu/gorm"
)

type DaoMethod interface {
	CreatePipelineStepLog(payload *model.PipelineStepLog) error
	GetPipelineStepLogsSince(createTime int64) ([]model.PipelineStepLog, error)
	GetLatestPipelineStepLog(step string, status int) (model.PipelineStepLog, bool, error)
	GetSapIDsByCreationCondition(condition string) ([]int64, error)
}

type dao struct {
	db *gorm.DB
}

func NewDaoMethod(db *gorm.DB) DaoMethod {
	return &dao{db: db}
}
