package transport

import "fmt"

// HTTPError is a terminal non-2xx provider response. For a transient
// status it is raised only after the retry budget is exhausted, with
// Attempts recording how many requests went out; for any other status
// Attempts is 1 and Transient is false.
type HTTPError struct {
	StatusCode int
	Body       string
	Attempts   int
	Transient  bool
}

func (e *HTTPError) Error() string {
	if e.Transient {
		return fmt.Sprintf("provider returned status %d after %d attempts: %s", e.StatusCode, e.Attempts, e.Body)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// NetworkError is a connection-level failure (DNS, refused, timeout, or a
// cancelled context mid-retry). Terminal: the transport never retries it.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
