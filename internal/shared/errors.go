package shared

import "fmt"

// Sentinel errors double as the closed set of failure kinds the pipeline
// reasons about. External adapters (Reddit, Spotify) translate library and
// transport errors into these before anything reaches the orchestrator, so
// retry policy can be decided with errors.Is alone.
var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// External call failure classes
	ErrTransient          = fmt.Errorf("transient network failure")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrServerError        = fmt.Errorf("upstream server error")
	ErrNotFound           = fmt.Errorf("not found")
	ErrAttemptsExhausted  = fmt.Errorf("retry attempts exhausted")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
