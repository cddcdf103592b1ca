package middleware

// HTTP header constants.
const (
	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderRateLimitLimit carries the configured request budget.
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining carries the budget left in the current window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// Error messages written in gateway-generated JSON bodies.
const (
	msgRateLimitExceeded = "rate limit exceeded"
	msgInternalError     = "internal server error"
)
