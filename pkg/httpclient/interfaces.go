package httpclient

import "context"

// Response is the part of an HTTP response feed and webhook callers need.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Client abstracts outbound GETs so fetchers can be tested against fakes.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
