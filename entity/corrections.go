package entity

import "github.com/shopspring/decimal"

type ExceptionRow struct {
	SapID   int64
	Account string
}

// ExceptionTable overrides the SAP id of every row whose account matches.
type ExceptionTable struct {
	Rows []ExceptionRow
}

type CreditRow struct {
	Account string
	Credit  decimal.Decimal
}

// CreditTable deducts credit amounts from the costs of matching accounts.
type CreditTable struct {
	Rows []CreditRow
}

// PORow keeps nil for cells that could not be coerced, so they never match.
type PORow struct {
	ResellerSapID *int64
	EndCustomer   *string
	PO            *string
	POCondition   *string
}

// POTable tags rows with purchase-order metadata keyed by (sap_id, account).
type POTable struct {
	Rows []PORow
}

type ConsolidationRow struct {
	SapID             int64
	CreationCondition string
}

// ConsolidationTable tags rows with their creation condition keyed by sap_id.
type ConsolidationTable struct {
	Rows []ConsolidationRow
}
