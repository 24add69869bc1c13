package consts

const (
	// Snapshot column names, in persisted order
	ColAccountID         = "account_id"
	ColSapID             = "sap_id"
	ColResellerName      = "reseller_name"
	ColMaterials         = "materials"
	ColEndCustomer       = "end_customer"
	ColSellerCost        = "seller_cost"
	ColCustomerCost      = "customer_cost"
	ColCountry           = "country"
	ColPO                = "po"
	ColPOCondition       = "po_condition"
	ColCreationCondition = "creation_condition"

	// Raw country extract columns, after currency normalization
	CountryColAccount      = "Cloud Account Number"
	CountryColReseller     = "Reseller Name"
	CountryColProduct      = "Product Name"
	CountryColSellerCost   = "Seller Cost"
	CountryColCustomerCost = "Customer Cost"

	// Raw region extract columns
	RegionColAccount     = "Account Number"
	RegionColSapID       = "SAP ID"
	RegionColEndCustomer = "End Customer"

	AccountIDWidth     = 12
	SentinelSapID      = 999999
	UnknownEndCustomer = "unknown"
	UnknownPlaceholder = "unknown"

	CreationByReseller    = "creation by reseller"
	CreationByEndCustomer = "creation by end customer"

	MaterialIDTechCare = "AWS-TECHCARE"
	MaterialIDUsage    = "AWS-USAGE"
	TechCareMarker     = "techcare"

	POHeaderCondition = "PO header"

	// Monetary values are kept to this many fraction digits
	CostPrecision = 2

	PreviewRows    = 5
	RegionLookback = 365

	BillingPeriodLayout = "01/02/06"
	FilenameDateLayout  = "20060102"
	RequestDateLayout   = "2006-01-02"
)

// SnapshotHeader is the persisted header of the working Billing_report.
var SnapshotHeader = []string{
	ColAccountID,
	ColSapID,
	ColResellerName,
	ColMaterials,
	ColEndCustomer,
	ColSellerCost,
	ColCustomerCost,
	ColCountry,
	ColPO,
	ColPOCondition,
	ColCreationCondition,
}

// FinalHeader is the ERP-ready output schema.
var FinalHeader = []string{
	"SAP ID",
	"Creation Condition",
	"End Customer",
	"PO",
	"PO Condition",
	"Material ID",
	"Billing Period",
	"Usage",
	"Seller Cost",
	"Customer Cost",
	"Margin",
	"Material Not Created",
	"Sales Order Number",
	"Billing Block",
	"Country",
}

// CurrencyCodes lists the billing currencies the report API may embed in column names.
var CurrencyCodes = []string{"EUR", "CHF", "USD", "GBP", "SEK", "DKK", "NOK", "PLN", "CZK", "HUF"}
