package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgValidationFailed   = "Request validation failed"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests, try again later"

	// Shortener-specific messages
	MsgInvalidURL         = "Invalid URL (must be http or https)"
	MsgInvalidAlias       = "customAlias must be 3-64 characters of letters, digits, '-' or '_'"
	MsgExpiryInPast       = "expiresAt must be in the future"
	MsgLinkNotFound       = "Link not found"
	MsgAliasTaken         = "Custom alias is already in use"
	MsgCodeSpaceExhausted = "Could not allocate a unique short code, try again"
)
