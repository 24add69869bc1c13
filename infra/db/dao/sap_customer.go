package dao

import (
	"fmt"

	"github.com/radhian/billing-reconciliation/infra/db/model"
)

func (d *dao) GetSapIDsByCreationCondition(condition string) ([]int64, error) {
	var sapIDs []int64
	if err := d.db.
		Model(&model.SapCustomer{}).
		Where("LOWER(creation_condition) = LOWER(?)", condition).
		Pluck("DISTINCT sap_id", &sapIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to look up SAP ids: %w", err)
	}
	return sapIDs, nil
}
