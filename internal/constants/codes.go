package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"

	// Shortener-specific codes
	CodeLinkNotFound       = "LINK_NOT_FOUND"
	CodeAliasTaken         = "ALIAS_TAKEN"
	CodeCodeSpaceExhausted = "CODE_SPACE_EXHAUSTED"

	// Success codes
	CodeLinkCreated = "LINK_CREATED"
	CodeStatsFound  = "STATS_FOUND"
)
