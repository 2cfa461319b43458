package apiclient

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request describes one call against the ERP API. Path is relative to the client base URL.
// Retried is flipped by the client before its single automatic refresh so that a request
// is never retried twice.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	Body    []byte
	Retried bool
}

// NewRequest builds a request, a non-nil body is encoded as JSON.
func NewRequest(method, path string, body any) (*Request, error) {
	req := &Request{Method: method, Path: path, Header: http.Header{}}
	if body == nil {
		return req, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req.Body = raw
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Response is a successful (2xx) answer of the API, the body is left for callers to interpret.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode parses the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}
