package health

import "errors"

// ErrCheckFailed is returned by Result.Err for failed checks.
var ErrCheckFailed = errors.New("health: check failed")
