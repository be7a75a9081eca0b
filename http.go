package pdk

import (
	"net/textproto"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/extism/go-pdk/internal/kernel"
)

// Reserved variable names. The host reads a request from the request:* keys
// and publishes the response under the response:* keys.
const (
	VarRequestMethod        = "request:method"
	VarRequestURL           = "request:url"
	VarRequestHeaderPrefix  = "request:header:"
	VarRequestBody          = "request:body"
	VarResponseStatus       = "response:status"
	VarResponseBody         = "response:body"
	VarResponseHeaderPrefix = "response:header:"
)

// HTTPMethod is one of the methods the host accepts.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodPatch   HTTPMethod = "PATCH"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
)

// Header is a single request header.
type Header struct {
	Name  string `validate:"required"`
	Value string
}

// HTTPRequest describes an outbound request. It lives entirely in the guest
// until Send copies it into the host's variable store.
type HTTPRequest struct {
	Method  HTTPMethod `validate:"required,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	URL     string     `validate:"required,url"`
	Headers []Header   `validate:"dive"`
	Body    []byte
}

// validate is shared; building a validator is expensive.
var validate = validator.New()

// NewHTTPRequest returns a request with no headers and no body.
func NewHTTPRequest(method HTTPMethod, url string) *HTTPRequest {
	return &HTTPRequest{Method: method, URL: url}
}

// SetHeader sets a header, replacing any earlier value for the same name.
// Names are case-insensitive. The host receives headers through the variable
// store, so no ordering between them is preserved.
func (r *HTTPRequest) SetHeader(name, value string) *HTTPRequest {
	for i := range r.Headers {
		if strings.EqualFold(r.Headers[i].Name, name) {
			r.Headers[i] = Header{Name: name, Value: value}
			return r
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	return r
}

// SetBody sets the request body. A nil body sends none.
func (r *HTTPRequest) SetBody(body []byte) *HTTPRequest {
	r.Body = body
	return r
}

// Send hands the request to the host. The returned response must be closed.
// A rejected request returns a *RequestError without touching the host; a
// host-level failure returns ErrRequestFailed.
func (r *HTTPRequest) Send() (*HTTPResponse, error) {
	if err := validate.Struct(r); err != nil {
		return nil, &RequestError{inner: err}
	}

	SetVarString(VarRequestMethod, string(r.Method))
	SetVarString(VarRequestURL, r.URL)
	for _, h := range r.Headers {
		SetVarString(VarRequestHeaderPrefix+h.Name, h.Value)
	}
	if r.Body != nil {
		SetVar(VarRequestBody, r.Body)
	}

	status, response := kernel.Get().HTTPRequest(0)
	if status != 0 {
		return nil, ErrRequestFailed
	}

	return &HTTPResponse{ptr: response}, nil
}

// HTTPResponse owns the host resource for one completed request. Body and
// headers are fetched from the host on every call.
type HTTPResponse struct {
	_ noCopy

	ptr    uint64
	closed bool
}

// Status returns the HTTP status code.
func (r *HTTPResponse) Status() int {
	return int(kernel.Get().HTTPStatusCode(r.ptr))
}

// Body returns the response body, or an empty slice if the host has none.
func (r *HTTPResponse) Body() []byte {
	body := GetVar(VarResponseBody)
	if body == nil {
		return []byte{}
	}
	return body
}

// Header returns a response header. Names are case-insensitive. A missing
// header and one whose value is not valid UTF-8 both report ok == false.
func (r *HTTPResponse) Header(name string) (string, bool) {
	value := GetVar(VarResponseHeaderPrefix + textproto.CanonicalMIMEHeaderKey(name))
	if value == nil || !utf8.Valid(value) {
		return "", false
	}
	return string(value), true
}

// Close releases the host resource. Only the first call reaches the host.
func (r *HTTPResponse) Close() {
	if r == nil || r.closed {
		return
	}
	r.closed = true
	kernel.Get().Free(r.ptr)
}
