package platform

import (
	"errors"
	"fmt"
)

// ServerError wraps a server-side platform failure (HTTP 5xx or an
// equivalent SDK fault). It is the only error class the outer run loop
// treats as transient: the current cycle is abandoned, a fixed backoff
// elapses, and the cycle restarts from the top.
type ServerError struct {
	Op     string // the client call that failed, e.g. "list_new"
	Status int    // HTTP status when known, zero otherwise
	Err    error
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("platform %s: server error %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("platform %s: server error: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a platform server error.
func IsTransient(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
