package httpdomain

// RequestContext is one request relative to a BackendEndpoint. Body is
// kept as bytes so the request can be replayed on retry.
type RequestContext struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}
