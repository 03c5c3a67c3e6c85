package proxy

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"civic-apps/internal/registry"
	"civic-apps/internal/web"
)

// hopByHopHeaders are not copied from the document API onto the proxied
// response.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Content-Encoding":    true,
	"Content-Length":      true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidCompanyNumber):
		web.WriteError(w, http.StatusBadRequest, "Invalid company number format")
	case errors.Is(err, registry.ErrInvalidOfficerID):
		web.WriteError(w, http.StatusBadRequest, "Invalid officer ID format")
	case errors.Is(err, registry.ErrInvalidDocumentID):
		web.WriteError(w, http.StatusBadRequest, "Invalid document ID format")
	case errors.Is(err, registry.ErrEmptyQuery):
		web.WriteError(w, http.StatusBadRequest, "Search query is required")
	case errors.Is(err, registry.ErrQueryTooLong):
		web.WriteError(w, http.StatusBadRequest, "Search query too long")
	case errors.Is(err, registry.ErrEndpointNotAllowed):
		web.WriteError(w, http.StatusBadRequest, "Invalid endpoint requested")
	case errors.Is(err, registry.ErrAuthentication):
		web.WriteError(w, http.StatusUnauthorized, "Authentication failed")
	case errors.Is(err, registry.ErrNotFound):
		web.WriteError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, registry.ErrTimeout):
		web.WriteError(w, http.StatusGatewayTimeout, "Request timeout")
	case errors.Is(err, registry.ErrUnavailable):
		web.WriteError(w, http.StatusBadGateway, "External service error")
	default:
		if status := registry.StatusCode(err); status != 0 {
			web.WriteError(w, status, err.Error())
			return
		}
		web.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeConfigError(w http.ResponseWriter) {
	web.WriteError(w, http.StatusInternalServerError, "Server configuration error")
}

// pageParams reads items_per_page and start_index, clamping both into the
// ranges the registry accepts.
func pageParams(r *http.Request, defaultPageSize int) url.Values {
	query := r.URL.Query()
	pageSize := registry.ClampInt(query.Get("items_per_page"), defaultPageSize, registry.MinPageSize, registry.MaxPageSize)
	startIndex := registry.ClampInt(query.Get("start_index"), 0, 0, registry.MaxStartIndex)

	params := url.Values{}
	params.Set("items_per_page", strconv.Itoa(pageSize))
	params.Set("start_index", strconv.Itoa(startIndex))
	return params
}

// copyDocumentHeaders keeps headers already set on dst, such as the
// security headers.
func copyDocumentHeaders(dst, src http.Header) {
	for name, values := range src {
		name = http.CanonicalHeaderKey(name)
		if hopByHopHeaders[name] {
			continue
		}
		if _, ok := dst[name]; ok {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

func acceptHeader(r *http.Request) string {
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" {
		return "*/*"
	}
	return accept
}
