package core

import (
	"context"
	"net/url"
)

// Backend performs JSON requests against the REST backend.
// body is encoded as the JSON request payload; out, when non-nil, receives the decoded response.
type Backend interface {
	Do(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error
}

type RequestOptions struct {
	Query     url.Values
	Long      bool // use the long timeout
	Anonymous bool // no bearer token, 401 does not touch the session
}

type RequestOption func(*RequestOptions)

func WithQuery(q url.Values) RequestOption {
	return func(o *RequestOptions) { o.Query = q }
}

// WithLongTimeout is used by endpoints known for backend latency spikes.
func WithLongTimeout() RequestOption {
	return func(o *RequestOptions) { o.Long = true }
}

// Anonymous marks credential exchanges (login) that must not carry nor clear a session.
func Anonymous() RequestOption {
	return func(o *RequestOptions) { o.Anonymous = true }
}

func ApplyRequestOptions(opts []RequestOption) RequestOptions {
	var o RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
