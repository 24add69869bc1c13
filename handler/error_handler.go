package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/entity"
)

type validationDetail struct {
	Expected []string `json:"expected,omitempty"`
	Actual   []string `json:"actual,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

type fetchDetail struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type mergeDetail struct {
	Source string   `json:"source"`
	Keys   []string `json:"keys"`
}

// errorStatus maps a step error onto the HTTP status shown to the operator.
func errorStatus(err error) (int, interface{}) {
	var (
		configErr     *entity.ConfigError
		validationErr *entity.ValidationError
		mergeErr      *entity.MergeError
		authErr       *entity.AuthError
		fetchErr      *entity.FetchError
	)

	switch {
	case errors.As(err, &configErr):
		return http.StatusBadRequest, nil
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationDetail{
			Expected: validationErr.Expected,
			Actual:   validationErr.Actual,
			Problems: validationErr.Problems,
		}
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest, nil
	case errors.As(err, &mergeErr):
		return http.StatusUnprocessableEntity, mergeDetail{Source: mergeErr.Source, Keys: mergeErr.Keys}
	case errors.As(err, &authErr):
		return http.StatusBadGateway, nil
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, fetchDetail{Status: fetchErr.Status, Body: fetchErr.Body}
	case errors.Is(err, entity.ErrNoSnapshot),
		errors.Is(err, entity.ErrNoMetadata),
		errors.Is(err, entity.ErrNoFinalReport):
		return http.StatusConflict, nil
	case errors.Is(err, entity.ErrLockNotObtained):
		return http.StatusLocked, nil
	case errors.Is(err, entity.ErrUnknownTemplate), errors.Is(err, entity.ErrFileNotFound):
		return http.StatusNotFound, nil
	default:
		return http.StatusInternalServerError, nil
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("[Handler] %s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		log.Warnf("[Handler] %s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, APIResponse{
		Status:  "error",
		Message: err.Error(),
		Data:    detail,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, APIResponse{
		Status:  "error",
		Message: message,
	})
}
