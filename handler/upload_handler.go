package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

// Upload applies one correction table. The {kind} route variable picks the step.
func (h *BillingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	apply, ok := h.uploadStep(mux.Vars(r)["kind"])
	if !ok {
		writeJSON(w, http.StatusNotFound, APIResponse{Status: "error", Message: "Unknown upload type"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeBadRequest(w, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeBadRequest(w, "No file uploaded")
			return
		}
		writeBadRequest(w, err.Error())
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeBadRequest(w, "No file selected")
		return
	}

	res, err := apply(r.Context(), operatorFrom(r), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, res.Message, res)
}

type uploadFunc func(ctx context.Context, operator, filename string, upload io.Reader) (entity.StepSummary, error)

func (h *BillingHandler) uploadStep(kind string) (uploadFunc, bool) {
	switch kind {
	case consts.TemplateExceptions:
		return h.Usecase.ApplyException, true
	case consts.TemplateCredits:
		return h.Usecase.ApplyCredit, true
	case consts.TemplatePO:
		return h.Usecase.ApplyPO, true
	case consts.TemplateConsolidation:
		return h.Usecase.ApplyConsolidation, true
	default:
		return nil, false
	}
}

func (h *BillingHandler) ConsolidationLookup(w http.ResponseWriter, r *http.Request) {
	res, err := h.Usecase.ApplyConsolidationLookup(r.Context(), operatorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, res.Message, res)
}
