package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

type sapFtpResult struct {
	Filename string `json:"filename"`
}

func (h *BillingHandler) TransformSapExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeBadRequest(w, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	name, err := h.SapFtp.Transform(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "File processed successfully", sapFtpResult{Filename: name})
}

func (h *BillingHandler) DownloadSapFtp(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	content, err := h.SapFtp.Download(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, name, "text/csv", content)
}
