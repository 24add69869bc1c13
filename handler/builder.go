package handler

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/usecase/billing"
	"github.com/radhian/billing-reconciliation/usecase/sapftp"
)

const maxUploadSize = 32 << 20

type BillingHandler struct {
	Usecase billing.BillingUsecase
	SapFtp  sapftp.SapFtpUsecase
}

func NewBillingHandler(uc billing.BillingUsecase, sapFtp sapftp.SapFtpUsecase) *BillingHandler {
	return &BillingHandler{Usecase: uc, SapFtp: sapFtp}
}

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("[Handler] Failed to encode response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func writeFile(w http.ResponseWriter, filename, contentType string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Errorf("[Handler] Failed to write %s: %v", filename, err)
	}
}

// operatorFrom reads the acting operator from the X-Operator header or the operator form field.
func operatorFrom(r *http.Request) string {
	if op := strings.TrimSpace(r.Header.Get("X-Operator")); op != "" {
		return op
	}
	return strings.TrimSpace(r.FormValue("operator"))
}
