package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Authorization request statuses understood by the API. "ALL" is only valid
// as a list filter, never as a stored status.
const (
	maxSessionIdentifierLength = 128
	maxNotesLength             = 1024
)

// ValidateSessionIdentifier validates the opaque client session identifier
func ValidateSessionIdentifier(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session identifier cannot be empty")
	}
	if len(sessionID) > maxSessionIdentifierLength {
		return fmt.Errorf("session identifier too long (max %d characters)", maxSessionIdentifierLength)
	}
	return nil
}

// ValidateStatusFilter validates an admin list status filter
func ValidateStatusFilter(status string) error {
	if status == "" {
		return nil // empty means all
	}

	validFilters := map[string]bool{
		"PENDING":  true,
		"APPROVED": true,
		"DENIED":   true,
		"ALL":      true,
	}

	if !validFilters[strings.ToUpper(status)] {
		return fmt.Errorf("invalid status filter: %s", status)
	}

	return nil
}

// ValidateDecision validates an admin decision value
func ValidateDecision(decision string) error {
	if decision == "" {
		return fmt.Errorf("decision cannot be empty")
	}

	validDecisions := map[string]bool{
		"APPROVE": true,
		"DENY":    true,
	}

	if !validDecisions[strings.ToUpper(decision)] {
		return fmt.Errorf("invalid decision: %s", decision)
	}

	return nil
}

// ValidateNotes validates optional decision notes
func ValidateNotes(notes string) error {
	if len(notes) > maxNotesLength {
		return fmt.Errorf("notes exceed maximum length of %d characters", maxNotesLength)
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ParseRequestID parses a request ID path parameter into its numeric form
func ParseRequestID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request ID: %s", raw)
	}
	return id, nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}
