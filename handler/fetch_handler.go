package handler

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/radhian/billing-reconciliation/entity"
)

func (h *BillingHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req entity.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.Operator == "" {
		req.Operator = operatorFrom(r)
	}

	res, err := h.Usecase.Fetch(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, res.Message, res)
}
