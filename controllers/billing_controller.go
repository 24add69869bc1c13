package controllers

import (
	"github.com/gorilla/mux"

	"github.com/radhian/billing-reconciliation/handler"
)

func RegisterBillingRoutes(router *mux.Router, h *handler.BillingHandler) {
	router.HandleFunc("/fetch", h.Fetch).Methods("POST")
	router.HandleFunc("/upload/{kind}", h.Upload).Methods("POST")
	router.HandleFunc("/consolidation/lookup", h.ConsolidationLookup).Methods("POST")
	router.HandleFunc("/finalize", h.Finalize).Methods("POST")
	router.HandleFunc("/download", h.Download).Methods("GET")
	router.HandleFunc("/templates/{name}", h.GetTemplate).Methods("GET")
	router.HandleFunc("/progress", h.GetProgress).Methods("GET")
	router.HandleFunc("/sap-ftp", h.TransformSapExport).Methods("POST")
	router.HandleFunc("/sap-ftp/{filename}", h.DownloadSapFtp).Methods("GET")
}
