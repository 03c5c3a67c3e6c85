package proxy

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"civic-apps/internal/paging"
	"civic-apps/internal/registry"
	"civic-apps/internal/web"
)

var companyResources = map[string]bool{
	"officers":                         true,
	"persons-with-significant-control": true,
	"filing-history":                   true,
	"charges":                          true,
}

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	web.WriteJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		Message:          "Companies House API Proxy is active and ready.",
		APIKeyConfigured: a.client.HasCredentials(),
	})
}

func (a *API) HandleCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	number, err := registry.NormalizeCompanyNumber(r.PathValue("company_number"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.forward(w, r, "/company/"+number, nil)
}

func (a *API) HandleCompanyResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	resource := r.PathValue("resource")
	if !companyResources[resource] {
		web.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	number, err := registry.NormalizeCompanyNumber(r.PathValue("company_number"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.forward(w, r, "/company/"+number+"/"+resource, pageParams(r, paging.DefaultPageSize))
}

func (a *API) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	kind := r.PathValue("kind")
	if kind != "companies" && kind != "officers" {
		web.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	query, err := registry.NormalizeQuery(r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	params := pageParams(r, registry.SearchPageSize)
	params.Set("q", query)
	a.forward(w, r, "/search/"+kind, params)
}

func (a *API) HandleAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	officerID := r.PathValue("officer_id")
	if err := registry.ValidateOfficerID(officerID); err != nil {
		writeServiceError(w, err)
		return
	}
	a.forward(w, r, "/officers/"+officerID+"/appointments", pageParams(r, paging.DefaultPageSize))
}

// HandleDocumentContent streams a filed document back to the caller. The
// caller's Accept header picks the rendition and the body is cut off at
// registry.MaxDocumentBytes.
func (a *API) HandleDocumentContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	if !a.client.HasCredentials() {
		writeConfigError(w)
		return
	}
	documentID := r.PathValue("document_id")
	if err := registry.ValidateDocumentID(documentID); err != nil {
		writeServiceError(w, err)
		return
	}

	doc, err := a.client.Document(r.Context(), documentID, acceptHeader(r))
	if err != nil {
		var apiErr *registry.APIError
		if errors.As(err, &apiErr) {
			web.WriteError(w, apiErr.StatusCode, "Document not available")
			return
		}
		writeServiceError(w, err)
		return
	}
	defer doc.Body.Close()

	copyDocumentHeaders(w.Header(), doc.Header)
	w.WriteHeader(http.StatusOK)
	written, err := io.Copy(w, io.LimitReader(doc.Body, registry.MaxDocumentBytes))
	if err != nil {
		a.logger.Warn("document stream interrupted",
			zap.String("document_id", documentID),
			zap.Int64("bytes", written),
			zap.Error(err))
	}
}

func (a *API) HandleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.MethodNotAllowed(w, http.MethodGet)
		return
	}
	if !a.client.HasCredentials() {
		writeConfigError(w)
		return
	}
	documentID := r.PathValue("document_id")
	table, found, err := a.client.BalanceSheet(r.Context(), documentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, balanceSheetResponse{
		DocumentID: documentID,
		Found:      found,
		Table:      table,
	})
}

// forward relays an allow-listed registry resource as raw JSON.
func (a *API) forward(w http.ResponseWriter, r *http.Request, path string, params url.Values) {
	if !a.client.HasCredentials() {
		writeConfigError(w)
		return
	}
	body, err := a.client.Raw(r.Context(), path, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
