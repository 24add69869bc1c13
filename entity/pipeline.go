package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type FetchRequest struct {
	Country   string `json:"country" validate:"required,len=2,alpha"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Operator  string `json:"operator"`
}

// StepSummary is returned by every step that writes a snapshot.
type StepSummary struct {
	RunID       string          `json:"run_id"`
	Message     string          `json:"message"`
	Country     string          `json:"country"`
	SellerSum   decimal.Decimal `json:"seller_sum"`
	CustomerSum decimal.Decimal `json:"customer_sum"`
}

type FetchSummary struct {
	StepSummary
	Rows           int           `json:"rows"`
	SentinelSapIDs int           `json:"sentinel_sap_ids"`
	Preview        BillingReport `json:"preview"`
}

type FinalizeSummary struct {
	StepSummary
	Rows int `json:"rows"`
}

// RawExtract is an untyped tabular payload as returned by the report API.
type RawExtract struct {
	Header []string
	Rows   [][]string
}

// Download is a rendered final report ready to be served.
type Download struct {
	Filename string
	Content  []byte
}

type StepLogEntry struct {
	RunID       string          `json:"run_id"`
	Step        string          `json:"step"`
	Status      int             `json:"status"`
	Message     string          `json:"message"`
	Country     string          `json:"country"`
	SellerSum   decimal.Decimal `json:"seller_sum"`
	CustomerSum decimal.Decimal `json:"customer_sum"`
	Operator    string          `json:"operator"`
	CreateTime  time.Time       `json:"create_time"`
}
