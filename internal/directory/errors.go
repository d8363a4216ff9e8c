package directory

import "errors"

var (
	// ErrNetwork covers rejected requests and non-2xx responses.
	ErrNetwork = errors.New("directory unavailable")
	// ErrDecode is returned when a response body does not have the expected shape.
	ErrDecode = errors.New("unexpected directory response")
	// ErrNotFound is returned when the requested id is absent.
	ErrNotFound = errors.New("not found")
)
