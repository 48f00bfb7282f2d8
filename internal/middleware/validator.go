package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateReportType checks if the report type is in the allowed list
func ValidateReportType(reportType string) error {
	if reportType == "" {
		return nil // defaulted by the service
	}
	allowed := map[string]bool{
		"financial":   true,
		"sales":       true,
		"operational": true,
		"custom":      true,
	}

	if !allowed[strings.ToLower(reportType)] {
		return fmt.Errorf("invalid report type: %s (allowed: financial, sales, operational, custom)", reportType)
	}
	return nil
}

// ValidateFilename validates uploaded filenames
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Block path traversal attempts
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("path separators are not allowed in filenames")
	}

	// Block dangerous patterns
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r", "\x00"}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("invalid characters in filename")
		}
	}

	if filepath.Ext(name) == "" {
		return fmt.Errorf("filename must carry an extension")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateResourceID validates file and report ID format
func ValidateResourceID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	// UUID pattern
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePageSize validates pagination page size
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 20 // default
	}
	if size > 100 {
		return 100 // max page size
	}
	return size
}
