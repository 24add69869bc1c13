package billing

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

// GetTemplate renders the header-only CSV an operator fills in for an upload.
func (u *billingUsecase) GetTemplate(name string) (entity.Download, error) {
	header, ok := consts.TemplateHeaders[name]
	if !ok {
		return entity.Download{}, fmt.Errorf("%w: %q", entity.ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return entity.Download{}, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return entity.Download{}, err
	}
	return entity.Download{Filename: name + "_template.csv", Content: buf.Bytes()}, nil
}
