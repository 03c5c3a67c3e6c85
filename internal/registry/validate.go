package registry

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	MaxQueryLength = 200

	MinPageSize   = 1
	MaxPageSize   = 1000
	MaxStartIndex = 10000
)

var (
	ErrInvalidCompanyNumber = errors.New("invalid company number format")
	ErrInvalidOfficerID     = errors.New("invalid officer ID format")
	ErrInvalidDocumentID    = errors.New("invalid document ID format")
	ErrEmptyQuery           = errors.New("search query is required")
	ErrQueryTooLong         = errors.New("search query too long")
	ErrEndpointNotAllowed   = errors.New("invalid endpoint requested")
)

var (
	companyNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)
	identifierPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,100}$`)

	// Only these registry paths may be requested through Raw.
	allowedEndpoints = []*regexp.Regexp{
		regexp.MustCompile(`^/company/[A-Z0-9]{6,8}$`),
		regexp.MustCompile(`^/company/[A-Z0-9]{6,8}/persons-with-significant-control$`),
		regexp.MustCompile(`^/company/[A-Z0-9]{6,8}/filing-history$`),
		regexp.MustCompile(`^/company/[A-Z0-9]{6,8}/charges$`),
		regexp.MustCompile(`^/company/[A-Z0-9]{6,8}/officers$`),
		regexp.MustCompile(`^/search/companies$`),
		regexp.MustCompile(`^/search/officers$`),
		regexp.MustCompile(`^/officers/[a-zA-Z0-9_-]+/appointments$`),
	}
)

// NormalizeCompanyNumber validates a company number and upper-cases it.
func NormalizeCompanyNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if !companyNumberPattern.MatchString(number) {
		return "", ErrInvalidCompanyNumber
	}
	return strings.ToUpper(number), nil
}

func ValidateOfficerID(id string) error {
	if !identifierPattern.MatchString(id) {
		return ErrInvalidOfficerID
	}
	return nil
}

func ValidateDocumentID(id string) error {
	if !identifierPattern.MatchString(id) {
		return ErrInvalidDocumentID
	}
	return nil
}

// NormalizeQuery trims a search query and enforces the length limit.
func NormalizeQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(query) > MaxQueryLength {
		return "", ErrQueryTooLong
	}
	return query, nil
}

// ClampInt parses raw and clamps it into [min, max]. Unparseable or empty
// input yields def.
func ClampInt(raw string, def, min, max int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// EndpointAllowed reports whether path is one of the registry resources the
// proxy is willing to fetch.
func EndpointAllowed(path string) bool {
	for _, pattern := range allowedEndpoints {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}
