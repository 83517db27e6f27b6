package webhook

import (
	"net"
	"net/http"
	"strings"
)

// Request is the read-only view of an inbound webhook the authenticator needs.
// Header keys are expected to be lower-cased already.
type Request interface {
	ClientIP() string
	Headers() map[string]string
	Body() []byte
}

type request struct {
	clientIP string
	headers  map[string]string
	body     []byte
}

func NewRequest(clientIP string, headers map[string]string, body []byte) Request {
	return &request{clientIP: clientIP, headers: headers, body: body}
}

func (r *request) ClientIP() string           { return r.clientIP }
func (r *request) Headers() map[string]string { return r.headers }
func (r *request) Body() []byte               { return r.body }

// FromHTTPRequest adapts a net/http request whose body has already been read.
// The client IP is the host part of RemoteAddr; whether a proxy header may
// override it is decided by the router middleware, not here.
func FromHTTPRequest(r *http.Request, body []byte) Request {
	clientIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		clientIP = host
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	return NewRequest(clientIP, headers, body)
}
