package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReportType(t *testing.T) {
	assert.NoError(t, ValidateReportType("financial"))
	assert.NoError(t, ValidateReportType("SALES"))
	assert.NoError(t, ValidateReportType("")) // defaulted later
	assert.Error(t, ValidateReportType("weird"))
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("report q2.xlsx"))
	assert.Error(t, ValidateFilename(""))
	assert.Error(t, ValidateFilename("../../etc/passwd"))
	assert.Error(t, ValidateFilename("sub/dir.csv"))
	assert.Error(t, ValidateFilename("a;b.csv"))
	assert.Error(t, ValidateFilename("noextension"))
}

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme-corp_01"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("bad tenant"))
	assert.Error(t, ValidateTenantID("x/y"))
}

func TestValidateResourceID(t *testing.T) {
	assert.NoError(t, ValidateResourceID("123e4567-e89b-42d3-a456-426614174000"))
	assert.Error(t, ValidateResourceID(""))
	assert.Error(t, ValidateResourceID("not-a-uuid"))
	assert.Error(t, ValidateResourceID("123e4567-e89b-42d3-a456-426614174000-extra"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\x00 "))
	assert.Equal(t, "a b", SanitizeString("a\x01 b"))
}

func TestValidateLimitBounds(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 35, ValidateLimit(35))

	assert.Equal(t, 20, ValidatePageSize(-1))
	assert.Equal(t, 100, ValidatePageSize(1000))
}
