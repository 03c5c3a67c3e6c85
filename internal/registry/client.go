// Package registry talks to the UK companies registry API, either directly
// with an API key or through the proxy served by internal/proxy.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"civic-apps/internal/paging"
)

const (
	DefaultBaseURL         = "https://api.company-information.service.gov.uk"
	DefaultDocumentBaseURL = "https://document-api.company-information.service.gov.uk"

	defaultTimeout         = 30 * time.Second
	defaultDocumentTimeout = 60 * time.Second
	maxErrorBodyBytes      = 64 << 10
)

type Config struct {
	BaseURL         string
	DocumentBaseURL string
	// APIKey is sent as the Basic auth username with an empty password.
	// Leave it empty when BaseURL points at the proxy.
	APIKey          string
	Timeout         time.Duration
	DocumentTimeout time.Duration
}

type Client struct {
	baseURL     string
	documentURL string
	apiKey      string
	httpClient  *http.Client
	docClient   *http.Client
	logger      *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	documentURL := strings.TrimRight(strings.TrimSpace(cfg.DocumentBaseURL), "/")
	if documentURL == "" {
		// A custom base (a proxy or a test server) serves documents too.
		documentURL = baseURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if documentURL == "" {
		documentURL = DefaultDocumentBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	docTimeout := cfg.DocumentTimeout
	if docTimeout <= 0 {
		docTimeout = defaultDocumentTimeout
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	docClient := &http.Client{
		Transport:     httpClient.Transport,
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
		Timeout:       docTimeout,
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     baseURL,
		documentURL: documentURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		httpClient:  httpClient,
		docClient:   docClient,
		logger:      logger,
	}
}

// HasCredentials reports whether requests carry an API key.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

func (c *Client) CompanyProfile(ctx context.Context, companyNumber string) (CompanyProfile, error) {
	number, err := NormalizeCompanyNumber(companyNumber)
	if err != nil {
		return CompanyProfile{}, err
	}

	var profile CompanyProfile
	if err := c.getJSON(ctx, "/company/"+number, nil, &profile); err != nil {
		return CompanyProfile{}, err
	}
	return profile, nil
}

func (c *Client) SearchCompanies(ctx context.Context, query string, pageSize, startIndex int) (paging.Page[CompanySummary], error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return paging.Page[CompanySummary]{}, err
	}
	return getPage[CompanySummary](ctx, c, "/search/companies", url.Values{"q": {q}}, pageSize, startIndex)
}

func (c *Client) SearchOfficers(ctx context.Context, query string, pageSize, startIndex int) (paging.Page[OfficerSummary], error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return paging.Page[OfficerSummary]{}, err
	}
	return getPage[OfficerSummary](ctx, c, "/search/officers", url.Values{"q": {q}}, pageSize, startIndex)
}

func (c *Client) CompanyOfficers(ctx context.Context, companyNumber string, pageSize, startIndex int) (paging.Page[Officer], error) {
	number, err := NormalizeCompanyNumber(companyNumber)
	if err != nil {
		return paging.Page[Officer]{}, err
	}
	return getPage[Officer](ctx, c, "/company/"+number+"/officers", nil, pageSize, startIndex)
}

func (c *Client) CompanyPSCs(ctx context.Context, companyNumber string, pageSize, startIndex int) (paging.Page[PSC], error) {
	number, err := NormalizeCompanyNumber(companyNumber)
	if err != nil {
		return paging.Page[PSC]{}, err
	}
	return getPage[PSC](ctx, c, "/company/"+number+"/persons-with-significant-control", nil, pageSize, startIndex)
}

func (c *Client) FilingHistory(ctx context.Context, companyNumber string, pageSize, startIndex int) (paging.Page[Filing], error) {
	number, err := NormalizeCompanyNumber(companyNumber)
	if err != nil {
		return paging.Page[Filing]{}, err
	}
	return getPage[Filing](ctx, c, "/company/"+number+"/filing-history", nil, pageSize, startIndex)
}

func (c *Client) Charges(ctx context.Context, companyNumber string, pageSize, startIndex int) (paging.Page[Charge], error) {
	number, err := NormalizeCompanyNumber(companyNumber)
	if err != nil {
		return paging.Page[Charge]{}, err
	}
	return getPage[Charge](ctx, c, "/company/"+number+"/charges", nil, pageSize, startIndex)
}

func (c *Client) OfficerAppointments(ctx context.Context, officerID string, pageSize, startIndex int) (paging.Page[Appointment], error) {
	if err := ValidateOfficerID(officerID); err != nil {
		return paging.Page[Appointment]{}, err
	}
	return getPage[Appointment](ctx, c, "/officers/"+officerID+"/appointments", nil, pageSize, startIndex)
}

// Raw fetches an allow-listed registry path and returns the JSON body
// untouched.
func (c *Client) Raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if !EndpointAllowed(path) {
		return nil, ErrEndpointNotAllowed
	}

	resp, err := c.get(ctx, c.httpClient, c.baseURL, path, query, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: upstream returned invalid JSON", ErrUnavailable)
	}
	return body, nil
}

// Document is a streamed document API response. The caller closes Body.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Header      http.Header
}

// Document opens the content of a filed document. accept selects the
// rendition (application/pdf, application/xhtml+xml, ...); empty means any.
func (c *Client) Document(ctx context.Context, documentID, accept string) (*Document, error) {
	if err := ValidateDocumentID(documentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(accept) == "" {
		accept = "*/*"
	}

	resp, err := c.get(ctx, c.docClient, c.documentURL, "/document/"+documentID+"/content", nil, accept)
	if err != nil {
		return nil, err
	}
	return &Document{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
	}, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values, pageSize, startIndex int) (paging.Page[T], error) {
	params := url.Values{}
	for key, values := range query {
		params[key] = values
	}
	params.Set("items_per_page", strconv.Itoa(pageSize))
	params.Set("start_index", strconv.Itoa(startIndex))

	var page paging.Page[T]
	if err := c.getJSON(ctx, path, params, &page); err != nil {
		return paging.Page[T]{}, err
	}
	return page, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.get(ctx, c.httpClient, c.baseURL, path, query, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// get performs the request and returns the response only for 2xx answers.
// Everything else is turned into an error and the body is closed.
func (c *Client) get(ctx context.Context, httpClient *http.Client, base, path string, query url.Values, accept string) (*http.Response, error) {
	fullURL := base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.SetBasicAuth(c.apiKey, "")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Warn("registry request failed", zap.String("path", path), zap.Error(err))
		return nil, transportError(err)
	}
	c.logger.Debug("registry request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload errorResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		apiErr.Message = payload.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
