package httpinfra

import "context"

func MergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// StaticHeaders provides the same headers on every request
type StaticHeaders map[string]string

func (h StaticHeaders) Headers(ctx context.Context) (map[string]string, error) {
	return MergeHeaders(nil, h), nil
}
