package apiclient

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Request describes one API call. It is passed by value and never modified once built.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    any // JSON encoded when non-nil
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out
func (r *Response) Decode(out any) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrap(err, "error decoding response body")
	}
	return nil
}

func (r *Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
