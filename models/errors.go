package models

import "fmt"

// ErrorKind classifies why a fetch or resolution failed
type ErrorKind int

const (
	// ErrorKindNetwork is a transport-level failure (DNS, connect, read)
	ErrorKindNetwork ErrorKind = iota
	// ErrorKindHTTP is a terminal non-2xx response
	ErrorKindHTTP
	// ErrorKindTooManyRedirects means the transport or intermediary chain exceeded its bound
	ErrorKindTooManyRedirects
	// ErrorKindTimeout means the overall resolution deadline was exceeded
	ErrorKindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNetwork:
		return "network error"
	case ErrorKindHTTP:
		return "http error"
	case ErrorKindTooManyRedirects:
		return "too many redirects"
	case ErrorKindTimeout:
		return "timeout"
	}
	return "unknown error"
}

// ResolveError is a fetch or resolution failure tagged with the URL of the offending hop
type ResolveError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *ResolveError) Error() string {
	switch {
	case e.Kind == ErrorKindHTTP:
		return fmt.Sprintf("%s: expected status 2xx; got %d at %s", e.Kind, e.StatusCode, e.URL)
	case e.Err != nil:
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.URL, e.Err.Error())
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.URL)
}

// Cause returns the underlying error, compatible with pkg/errors
func (e *ResolveError) Cause() error {
	return e.Err
}
