package handler

import "net/http"

func (h *BillingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Usecase.GetProgress(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "", entries)
}
