package interviewsvc

import "errors"

// Sentinel kinds for client construction.
var (
	ErrBaseURL = errors.New("interviewsvc: base url must be absolute")
)
