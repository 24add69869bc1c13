package consts

const (
	// Pipeline step names recorded in the step log
	StepFetch               = "fetch"
	StepException           = "exception"
	StepCredit              = "credit"
	StepPO                  = "po"
	StepConsolidation       = "consolidation"
	StepConsolidationLookup = "consolidation_lookup"
	StepFinalize            = "finalize"
	StepDownload            = "download"

	// Step status codes
	StatusSucceeded = 1
	StatusFailed    = 2

	SnapshotLockKey = "billing-report:snapshot"

	DefaultPort                 = "8080"
	DefaultDataDir              = "data"
	DefaultHTTPTimeoutSec       = 60
	DefaultLockTTLSec           = 120
	DefaultRotationIntervalMin  = 1440
	DefaultRotationWorkerNumber = 1
	DefaultOperator             = "operator"
	SnapshotFileName            = "billing_report.csv"
	FinalReportFileName         = "final_report.csv"
	MetadataFileName            = "metadata.json"
	ReportFilenameFormat        = "AWS_Billing_Report_%s_from_%s_to_%s.csv"
	ReportModule                = "REPORTS_REPORTS_MODULE"
	ReportCategory              = "BILLING_REPORTS"
	RegionKey                   = "REGION"
)
