package reportapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

type fixedDateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type selectedRange struct {
	FixedDateRange fixedDateRange `json:"fixed_date_range"`
}

type dateRangeOption struct {
	SelectedRange selectedRange `json:"selected_range"`
}

type reportSpecs struct {
	DateRangeOption dateRangeOption `json:"date_range_option"`
}

type reportRequest struct {
	ReportID     int64       `json:"report_id"`
	ReportModule string      `json:"report_module"`
	Category     string      `json:"category"`
	Specs        reportSpecs `json:"specs"`
}

type reportResponse struct {
	Results string `json:"results"`
}

// Client calls the partner billing-report API.
type Client struct {
	rest *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &Client{rest: rest}
}

// FetchReport returns the CSV text of one report over the inclusive UTC range.
func (c *Client) FetchReport(ctx context.Context, token string, scope consts.CountryConfig, start, end time.Time) (string, error) {
	payload := reportRequest{
		ReportID:     scope.ReportID,
		ReportModule: consts.ReportModule,
		Category:     consts.ReportCategory,
		Specs: reportSpecs{DateRangeOption: dateRangeOption{SelectedRange: selectedRange{
			FixedDateRange: fixedDateRange{
				StartDate: start.UTC().Format(time.RFC3339),
				EndDate:   end.UTC().Format(time.RFC3339),
			},
		}}},
	}

	path := fmt.Sprintf("/api/v3/accounts/%d/reports/%d/reportDataCsv", scope.AccountID, scope.ReportID)
	log.Infof("[ReportAPI] Requesting report %d for account %d (%s to %s)",
		scope.ReportID, scope.AccountID, payload.Specs.DateRangeOption.SelectedRange.FixedDateRange.StartDate,
		payload.Specs.DateRangeOption.SelectedRange.FixedDateRange.EndDate)

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("report request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		log.Errorf("[ReportAPI] Report %d returned HTTP %d", scope.ReportID, resp.StatusCode())
		return "", &entity.FetchError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var out reportResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("failed to decode report response: %w", err)
	}
	return out.Results, nil
}
