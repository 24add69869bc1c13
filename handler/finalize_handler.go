package handler

import "net/http"

func (h *BillingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	res, err := h.Usecase.Finalize(r.Context(), operatorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, res.Message, res)
}
