package entity

import (
	"github.com/shopspring/decimal"
)

// BillingRecord is one row of the working Billing_report.
type BillingRecord struct {
	AccountID         string          `json:"account_id"`
	SapID             *int64          `json:"sap_id"`
	ResellerName      string          `json:"reseller_name"`
	Materials         string          `json:"materials"`
	EndCustomer       string          `json:"end_customer"`
	SellerCost        decimal.Decimal `json:"seller_cost"`
	CustomerCost      decimal.Decimal `json:"customer_cost"`
	Country           string          `json:"country"`
	PO                *string         `json:"po"`
	POCondition       *string         `json:"po_condition"`
	CreationCondition string          `json:"creation_condition"`
}

// BillingReport is the ordered set of records a pipeline step reads and writes.
type BillingReport []BillingRecord

// Totals sums seller and customer cost over every row.
func (r BillingReport) Totals() (decimal.Decimal, decimal.Decimal) {
	seller, customer := decimal.Zero, decimal.Zero
	for _, rec := range r {
		seller = seller.Add(rec.SellerCost)
		customer = customer.Add(rec.CustomerCost)
	}
	return seller, customer
}

// Clone returns a deep copy so a step can mutate rows without touching the loaded snapshot.
func (r BillingReport) Clone() BillingReport {
	out := make(BillingReport, len(r))
	for i, rec := range r {
		out[i] = rec
		out[i].SapID = cloneInt(rec.SapID)
		out[i].PO = cloneString(rec.PO)
		out[i].POCondition = cloneString(rec.POCondition)
	}
	return out
}

// FinalRecord is one ERP-postable line of the finalized report.
type FinalRecord struct {
	SapID              int64           `json:"sap_id"`
	CreationCondition  string          `json:"creation_condition"`
	EndCustomer        string          `json:"end_customer"`
	PO                 string          `json:"po"`
	POCondition        string          `json:"po_condition"`
	MaterialID         string          `json:"material_id"`
	BillingPeriod      string          `json:"billing_period"`
	Usage              string          `json:"usage"`
	SellerCost         decimal.Decimal `json:"seller_cost"`
	CustomerCost       decimal.Decimal `json:"customer_cost"`
	Margin             decimal.Decimal `json:"margin"`
	MaterialNotCreated string          `json:"material_not_created"`
	SalesOrderNumber   string          `json:"sales_order_number"`
	BillingBlock       string          `json:"billing_block"`
	Country            string          `json:"country"`
}

// WorkflowMetadata is written by the fetch step and read by every later step.
type WorkflowMetadata struct {
	Country   string `json:"country"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
