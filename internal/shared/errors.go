package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSetlistNotFound    = fmt.Errorf("setlist not found")
	ErrSongNotFound       = fmt.Errorf("song not found")

	// Reconciliation errors
	ErrSaveInFlight      = fmt.Errorf("save already in flight")
	ErrMalformedResponse = fmt.Errorf("malformed server response")
	ErrStaleResponse     = fmt.Errorf("response superseded by local edits")
	ErrUnknownContainer  = fmt.Errorf("unknown container")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrDuplicateSong   = fmt.Errorf("song already exists")
)
