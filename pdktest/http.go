package pdktest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	pdk "github.com/extism/go-pdk"
)

// responsePrefix covers every variable the host publishes for a response.
const responsePrefix = "response:"

type outgoingRequest struct {
	method  string
	url     string
	headers [][2]string
	body    []byte
}

type incomingResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// HTTPRequest executes the request described by the request:* variables.
// The variables are consumed. Any failure yields status 1 and no handle.
func (h *Host) HTTPRequest(_ uint64) (int32, uint64) {
	req, err := h.takeRequest()
	if err != nil {
		h.logger.Warn("rejected plugin HTTP request", zap.Error(err))
		return 1, 0
	}

	resp, err := h.do(req)
	if err != nil {
		h.logger.Warn("plugin HTTP request failed", zap.String("url", req.url), zap.Error(err))
		return 1, 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return 0, h.publish(resp)
}

func (h *Host) HTTPStatusCode(response uint64) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	status, ok := h.responses[response]
	if !ok {
		h.fault("status of unknown response %d", response)
		return 0
	}
	return int32(status)
}

func (h *Host) takeRequest() (outgoingRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req outgoingRequest
	for name, value := range h.vars {
		switch {
		case name == pdk.VarRequestMethod:
			req.method = string(value)
		case name == pdk.VarRequestURL:
			req.url = string(value)
		case name == pdk.VarRequestBody:
			req.body = value
		case strings.HasPrefix(name, pdk.VarRequestHeaderPrefix):
			req.headers = append(req.headers, [2]string{strings.TrimPrefix(name, pdk.VarRequestHeaderPrefix), string(value)})
		default:
			continue
		}
		delete(h.vars, name)
	}
	sort.Slice(req.headers, func(i, j int) bool { return req.headers[i][0] < req.headers[j][0] })

	if req.method == "" || req.url == "" {
		return req, fmt.Errorf("missing %s or %s", pdk.VarRequestMethod, pdk.VarRequestURL)
	}

	u, err := url.Parse(req.url)
	if err != nil {
		return req, fmt.Errorf("invalid url: %w", err)
	}

	// deny all requests by default
	hostMatches := false
	for i, allowedHost := range h.allowedHosts {
		if allowedHost == u.Hostname() || h.allowed[i].Match(u.Hostname()) {
			hostMatches = true
			break
		}
	}

	if !hostMatches {
		return req, fmt.Errorf("HTTP request to '%v' is not allowed", req.url)
	}

	return req, nil
}

func (h *Host) do(request outgoingRequest) (incomingResponse, error) {
	var bodyReader io.Reader
	if request.body != nil {
		bodyReader = bytes.NewReader(request.body)
	}

	req, err := http.NewRequestWithContext(h.ctx, request.method, request.url, bodyReader)
	if err != nil {
		return incomingResponse{}, err
	}

	for _, header := range request.headers {
		req.Header.Set(header[0], header[1])
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return incomingResponse{}, err
	}
	defer resp.Body.Close()

	limiter := http.MaxBytesReader(nil, resp.Body, h.MaxHTTPResponseBytes)
	body, err := io.ReadAll(limiter)
	if err != nil {
		return incomingResponse{}, err
	}

	return incomingResponse{status: resp.StatusCode, headers: resp.Header, body: body}, nil
}

// publish replaces the response:* variables and returns a new response
// handle. Callers hold h.mu.
func (h *Host) publish(resp incomingResponse) uint64 {
	for name := range h.vars {
		if strings.HasPrefix(name, responsePrefix) {
			delete(h.vars, name)
		}
	}

	h.vars[pdk.VarResponseStatus] = []byte(strconv.Itoa(resp.status))
	h.vars[pdk.VarResponseBody] = resp.body
	for name, values := range resp.headers {
		h.vars[pdk.VarResponseHeaderPrefix+name] = []byte(strings.Join(values, ", "))
	}

	h.LastStatusCode = resp.status

	handle := h.alloc(0)
	h.responses[handle] = resp.status
	return handle
}
