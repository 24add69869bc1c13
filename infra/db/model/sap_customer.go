package model

// SapCustomer is the read-only SAP classification of a customer identifier.
type SapCustomer struct {
	ID                int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SapID             int64  `gorm:"not null;index" json:"sap_id"`
	CustomerName      string `gorm:"size:200" json:"customer_name"`
	CreationCondition string `gorm:"size:50;not null" json:"creation_condition"`
}
