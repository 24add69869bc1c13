package model

type PipelineStepLog struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID       string `gorm:"size:36;not null;index" json:"run_id"`
	Step        string `gorm:"size:50;not null" json:"step"`
	Status      int    `gorm:"not null" json:"status"`
	Message     string `gorm:"type:text;not null" json:"message"`
	Country     string `gorm:"size:10" json:"country"`
	SellerSum   string `gorm:"size:50" json:"seller_sum"`
	CustomerSum string `gorm:"size:50" json:"customer_sum"`
	CreateTime  int64  `gorm:"not null;index" json:"create_time"`
	CreateBy    string `gorm:"size:100;not null" json:"create_by"`
}
