package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/radhian/billing-reconciliation/handler"
)

func TestRegisterBillingRoutes(t *testing.T) {
	router := mux.NewRouter()
	RegisterBillingRoutes(router, handler.NewBillingHandler(nil, nil))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/fetch"},
		{http.MethodPost, "/upload/credits"},
		{http.MethodPost, "/consolidation/lookup"},
		{http.MethodPost, "/finalize"},
		{http.MethodGet, "/download"},
		{http.MethodGet, "/templates/po"},
		{http.MethodGet, "/progress"},
		{http.MethodPost, "/sap-ftp"},
		{http.MethodGet, "/sap-ftp/export_FTP.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var match mux.RouteMatch
			assert.True(t, router.Match(httptest.NewRequest(tt.method, tt.path, nil), &match))
		})
	}
}
