package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

var requestValidator = validator.New()

// Fetch pulls the country and region extracts, merges them and replaces the
// working snapshot and metadata.
func (u *billingUsecase) Fetch(ctx context.Context, req entity.FetchRequest) (summary entity.FetchSummary, err error) {
	runID := uuid.NewString()
	summary.RunID = runID
	country := strings.ToUpper(strings.TrimSpace(req.Country))

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Fetch] Panic recovered for run %s: %v", runID, r)
			err = fmt.Errorf("fetch step aborted: %v", r)
		}
		u.recordStep(runID, consts.StepFetch, req.Operator, summary.StepSummary, err)
	}()

	scope, ok := consts.Countries[country]
	if !ok {
		return summary, &entity.ConfigError{Message: fmt.Sprintf("unsupported country %q", req.Country)}
	}
	if err := validateFetchRequest(req); err != nil {
		return summary, err
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return summary, err
	}

	log.Infof("[Fetch] Run %s pulling %s from %s to %s", runID, country, start.Format(time.RFC3339), end.Format(time.RFC3339))
	countryCSV, err := u.pull(ctx, country, scope, start, end)
	if err != nil {
		return summary, err
	}
	regionStart := regionRangeStart(end)
	regionCSV, err := u.pull(ctx, consts.RegionKey, consts.Region, regionStart, end)
	if err != nil {
		return summary, err
	}

	countryRaw, err := parseExtract(countryCSV)
	if err != nil {
		return summary, fmt.Errorf("country extract: %w", err)
	}
	regionRaw, err := parseExtract(regionCSV)
	if err != nil {
		return summary, fmt.Errorf("region extract: %w", err)
	}

	report, stats, err := mergeExtracts(countryRaw, regionRaw, country)
	if err != nil {
		return summary, err
	}

	lock, err := u.obtainSnapshotLock(ctx, runID)
	if err != nil {
		return summary, err
	}
	defer u.releaseSnapshotLock(lock, runID)

	meta := entity.WorkflowMetadata{Country: country, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := u.replaceRun(ctx, runID, report, meta); err != nil {
		return summary, err
	}

	message := fmt.Sprintf("Fetched %d rows for %s", len(report), country)
	if stats.SentinelSapIDs > 0 {
		message = fmt.Sprintf("%s, %d without a usable SAP ID", message, stats.SentinelSapIDs)
	}
	summary = entity.FetchSummary{
		StepSummary:    buildSummary(runID, message, country, report),
		Rows:           len(report),
		SentinelSapIDs: stats.SentinelSapIDs,
		Preview:        preview(report),
	}
	log.Infof("[Fetch] Run %s done: %s", runID, message)
	return summary, nil
}

// replaceRun commits a fetched report. The final report is dropped first and
// the snapshot goes last; if the snapshot cannot be written the previous
// metadata is put back so the stored snapshot and metadata stay paired.
func (u *billingUsecase) replaceRun(ctx context.Context, runID string, report entity.BillingReport, meta entity.WorkflowMetadata) error {
	if err := u.store.ClearFinal(ctx); err != nil {
		return fmt.Errorf("failed to clear final report: %w", err)
	}

	prevMeta, err := u.store.LoadMetadata(ctx)
	hadMeta := err == nil
	if err != nil && !errors.Is(err, entity.ErrNoMetadata) {
		return err
	}

	if err := u.store.SaveMetadata(ctx, meta); err != nil {
		return fmt.Errorf("failed to save workflow metadata: %w", err)
	}
	if err := u.store.SaveSnapshot(ctx, report); err != nil {
		var rollbackErr error
		if hadMeta {
			rollbackErr = u.store.SaveMetadata(ctx, prevMeta)
		} else {
			rollbackErr = u.store.ClearMetadata(ctx)
		}
		if rollbackErr != nil {
			log.Errorf("[Fetch] Run %s failed to restore metadata: %v", runID, rollbackErr)
		}
		return fmt.Errorf("failed to save billing report: %w", err)
	}
	return nil
}

// pull refreshes the token for key and requests one extract.
func (u *billingUsecase) pull(ctx context.Context, key string, scope consts.CountryConfig, start, end time.Time) (string, error) {
	token, err := u.tokens.Refresh(ctx, key)
	if err != nil {
		return "", &entity.AuthError{Key: key, Err: err}
	}
	return u.reports.FetchReport(ctx, token, scope, start, end)
}

func validateFetchRequest(req entity.FetchRequest) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return &entity.ValidationError{Problems: problems}
}

// parseDateRange converts calendar dates to the inclusive UTC bounds
// [start 00:00:00Z, end 23:59:59Z].
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(consts.RequestDateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, &entity.ValidationError{Problems: []string{fmt.Sprintf("invalid start date %q", startDate)}}
	}
	end, err := time.Parse(consts.RequestDateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, &entity.ValidationError{Problems: []string{fmt.Sprintf("invalid end date %q", endDate)}}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, &entity.ValidationError{Problems: []string{"end date is before start date"}}
	}
	return dayStart(start), dayEnd(end), nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// regionRangeStart is the first day of the trailing window that ends on end's day.
func regionRangeStart(end time.Time) time.Time {
	return dayStart(end.AddDate(0, 0, -(consts.RegionLookback - 1)))
}

func preview(report entity.BillingReport) entity.BillingReport {
	n := len(report)
	if n > consts.PreviewRows {
		n = consts.PreviewRows
	}
	return report[:n].Clone()
}
