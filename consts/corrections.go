package consts

const (
	TemplateExceptions    = "exceptions"
	TemplateCredits       = "credits"
	TemplatePO            = "po"
	TemplateConsolidation = "consolidation"

	HeaderSapID             = "SAP ID"
	HeaderAccount           = "Account"
	HeaderCredit            = "Credit"
	HeaderResellerSapID     = "Reseller SAP ID"
	HeaderEndCustomer       = "End Customer"
	HeaderPO                = "PO"
	HeaderPOCondition       = "PO Condition"
	HeaderConditionCreation = "Condition Creation/ Country"
)

var (
	ExceptionHeaders     = []string{HeaderSapID, HeaderAccount}
	CreditHeaders        = []string{HeaderAccount, HeaderCredit}
	POHeaders            = []string{HeaderResellerSapID, HeaderEndCustomer, HeaderPO, HeaderPOCondition}
	ConsolidationHeaders = []string{HeaderSapID, HeaderConditionCreation}
)

// TemplateHeaders maps a downloadable template name to its expected header row.
var TemplateHeaders = map[string][]string{
	TemplateExceptions:    ExceptionHeaders,
	TemplateCredits:       CreditHeaders,
	TemplatePO:            POHeaders,
	TemplateConsolidation: ConsolidationHeaders,
}
