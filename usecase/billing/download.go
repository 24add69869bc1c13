package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

// Download returns the final report and archives a copy to blob storage.
// An archive failure is logged and does not block the download.
func (u *billingUsecase) Download(ctx context.Context, operator string) (result entity.Download, err error) {
	runID := uuid.NewString()
	var summary entity.StepSummary

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Download] Panic recovered for run %s: %v", runID, r)
			err = fmt.Errorf("download aborted: %v", r)
		}
		u.recordStep(runID, consts.StepDownload, operator, summary, err)
	}()

	content, err := u.store.LoadFinal(ctx)
	if err != nil {
		return result, err
	}

	meta, err := u.store.LoadMetadata(ctx)
	if err != nil && !errors.Is(err, entity.ErrNoMetadata) {
		return result, err
	}
	result = entity.Download{Filename: reportFilename(meta), Content: content}

	if u.blob != nil {
		if err := u.blob.Upload(ctx, result.Filename, content, "text/csv"); err != nil {
			log.Errorf("[Download] Failed to archive %s: %v", result.Filename, err)
		} else {
			log.Infof("[Download] Archived %s", result.Filename)
		}
	}

	summary = entity.StepSummary{RunID: runID, Message: "Downloaded " + result.Filename, Country: meta.Country}
	return result, nil
}

// reportFilename fills unknown placeholders for any missing metadata field.
func reportFilename(meta entity.WorkflowMetadata) string {
	orUnknown := func(s string) string {
		if s == "" {
			return consts.UnknownPlaceholder
		}
		return s
	}
	return fmt.Sprintf(consts.ReportFilenameFormat,
		orUnknown(meta.Country),
		orUnknown(strings.ReplaceAll(meta.StartDate, "-", "")),
		orUnknown(strings.ReplaceAll(meta.EndDate, "-", "")),
	)
}
