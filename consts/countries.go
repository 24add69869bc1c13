package consts

// CountryConfig describes how to pull one scope of the partner billing report.
type CountryConfig struct {
	SecretID  string
	ReportID  int64
	AccountID int64
}

// Countries is the static supported-country registry.
var Countries = map[string]CountryConfig{
	"BE": {SecretID: "api-keys-BE", ReportID: 49709, AccountID: 301},
	"CH": {SecretID: "api-keys-CH", ReportID: 49725, AccountID: 306},
}

// Region is the region-wide scope used for the rolling extract.
var Region = CountryConfig{SecretID: "api-keys-REGION", ReportID: 49741, AccountID: 300}
