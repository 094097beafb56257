package publisher

import "fmt"

// Error is returned by a Publisher for any failure. A non-2xx reply sets
// StatusCode and Body; a transport or decoding failure sets Err.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }
