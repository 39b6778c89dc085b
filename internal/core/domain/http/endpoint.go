package httpdomain

import "fmt"

// BackendEndpoint describes one remote service used by the CLI.
type BackendEndpoint struct {
	BaseURL   string
	UserAgent string
}

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	const max = 200
	body := string(e.Body)
	if len(body) > max {
		body = body[:max] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, body)
}

// IsSuccess reports whether status is in the 2xx range
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
