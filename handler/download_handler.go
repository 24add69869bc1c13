package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *BillingHandler) Download(w http.ResponseWriter, r *http.Request) {
	res, err := h.Usecase.Download(r.Context(), operatorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, res.Filename, "text/csv", res.Content)
}

func (h *BillingHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	res, err := h.Usecase.GetTemplate(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, res.Filename, "text/csv", res.Content)
}
