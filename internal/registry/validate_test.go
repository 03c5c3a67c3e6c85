package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompanyNumber(t *testing.T) {
	got, err := NormalizeCompanyNumber(" sc123456 ")
	assert.NoError(t, err)
	assert.Equal(t, "SC123456", got)

	for _, bad := range []string{"", "12345", "123456789", "12-4567", "../etc"} {
		_, err := NormalizeCompanyNumber(bad)
		assert.ErrorIs(t, err, ErrInvalidCompanyNumber, bad)
	}
}

func TestNormalizeQuery(t *testing.T) {
	got, err := NormalizeQuery("  tesco ")
	assert.NoError(t, err)
	assert.Equal(t, "tesco", got)

	_, err = NormalizeQuery("   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = NormalizeQuery(strings.Repeat("a", MaxQueryLength+1))
	assert.ErrorIs(t, err, ErrQueryTooLong)
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 20, ClampInt("", 20, MinPageSize, MaxPageSize))
	assert.Equal(t, 20, ClampInt("abc", 20, MinPageSize, MaxPageSize))
	assert.Equal(t, 1, ClampInt("0", 20, MinPageSize, MaxPageSize))
	assert.Equal(t, 1000, ClampInt("5000", 20, MinPageSize, MaxPageSize))
	assert.Equal(t, 35, ClampInt(" 35 ", 20, MinPageSize, MaxPageSize))
	assert.Equal(t, 0, ClampInt("-4", 0, 0, MaxStartIndex))
}

func TestIdentifierValidation(t *testing.T) {
	assert.NoError(t, ValidateOfficerID("abc_DEF-123"))
	assert.ErrorIs(t, ValidateOfficerID("abc/123"), ErrInvalidOfficerID)
	assert.ErrorIs(t, ValidateOfficerID(""), ErrInvalidOfficerID)
	assert.ErrorIs(t, ValidateDocumentID(strings.Repeat("x", 101)), ErrInvalidDocumentID)
}

func TestEndpointAllowed(t *testing.T) {
	allowed := []string{
		"/company/01234567",
		"/company/SC123456/officers",
		"/company/123456/charges",
		"/search/companies",
		"/officers/abc-123_x/appointments",
	}
	for _, path := range allowed {
		assert.True(t, EndpointAllowed(path), path)
	}

	denied := []string{
		"/company/01234567/registers",
		"/company/lowercase",
		"/search/companies/../../admin",
		"//evil.example/search/companies",
		"/officers/abc/appointments/extra",
	}
	for _, path := range denied {
		assert.False(t, EndpointAllowed(path), path)
	}
}
