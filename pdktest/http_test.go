package pdktest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdk "github.com/extism/go-pdk"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Echo", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setRequest(h *Host, method, url string) {
	h.SetVar(pdk.VarRequestMethod, []byte(method))
	h.SetVar(pdk.VarRequestURL, []byte(url))
}

func TestHTTPRequest_allowed(t *testing.T) {
	srv := upstream(t)
	h := newHost(t, WithAllowedHosts("127.0.0.*"), WithHTTPClient(srv.Client()))

	setRequest(h, "POST", srv.URL)
	h.SetVar(pdk.VarRequestHeaderPrefix+"X-Token", []byte("secret"))
	h.SetVar(pdk.VarRequestBody, []byte("ping"))

	status, handle := h.HTTPRequest(0)
	require.Equal(t, int32(0), status)
	require.NotZero(t, handle)

	assert.Equal(t, int32(http.StatusCreated), h.HTTPStatusCode(handle))
	assert.Equal(t, http.StatusCreated, h.LastStatusCode)

	body, _ := h.Var(pdk.VarResponseBody)
	assert.Equal(t, "ping", string(body))

	echo, ok := h.Var(pdk.VarResponseHeaderPrefix + "X-Echo")
	assert.True(t, ok)
	assert.Equal(t, "secret", string(echo))

	code, _ := h.Var(pdk.VarResponseStatus)
	assert.Equal(t, "201", string(code))

	_, ok = h.Var(pdk.VarRequestURL)
	assert.False(t, ok, "request variables must be consumed")

	h.Free(handle)
	assert.Zero(t, h.Live())
}

func TestHTTPRequest_denied(t *testing.T) {
	srv := upstream(t)

	allowed := [][]string{
		nil, // If no allowed hosts are defined, then all requests are denied
		{"google.*"},
	}

	for _, hosts := range allowed {
		h := newHost(t, WithAllowedHosts(hosts...), WithHTTPClient(srv.Client()))
		setRequest(h, "GET", srv.URL)

		status, handle := h.HTTPRequest(0)
		assert.Equal(t, int32(1), status, "HTTP Request must fail")
		assert.Zero(t, handle)
		assert.Zero(t, h.Live())
	}
}

func TestHTTPRequest_responseTooLarge(t *testing.T) {
	srv := upstream(t)
	h := newHost(t,
		WithAllowedHosts("127.0.0.1"),
		WithHTTPClient(srv.Client()),
		WithMaxHTTPResponseBytes(2),
	)

	setRequest(h, "POST", srv.URL)
	h.SetVar(pdk.VarRequestBody, []byte("too long"))

	status, _ := h.HTTPRequest(0)
	assert.Equal(t, int32(1), status)
}

func TestHTTPRequest_missingURL(t *testing.T) {
	h := newHost(t, WithAllowedHosts("*"))
	h.SetVar(pdk.VarRequestMethod, []byte("GET"))

	status, _ := h.HTTPRequest(0)
	assert.Equal(t, int32(1), status)
}

func TestHTTPStatusCode_unknownHandle(t *testing.T) {
	h := newHost(t)

	assert.Zero(t, h.HTTPStatusCode(42))
	assert.Len(t, h.Faults(), 1)
}

func TestHTTPRequest_afterLargeResponse(t *testing.T) {
	srv := upstream(t)
	h := newHost(t, WithAllowedHosts("127.0.0.1"), WithHTTPClient(srv.Client()))

	large := make([]byte, 2*int(defaultMaxVarBytes))
	setRequest(h, "POST", srv.URL)
	h.SetVar(pdk.VarRequestBody, large)

	status, handle := h.HTTPRequest(0)
	require.Equal(t, int32(0), status)
	h.Free(handle)

	body, _ := h.Var(pdk.VarResponseBody)
	require.Len(t, body, len(large))

	assert.NotPanics(t, func() {
		h.VarSet([]byte(pdk.VarRequestMethod), []byte("GET"))
		h.VarSet([]byte(pdk.VarRequestURL), []byte(srv.URL))
	}, "response variables must not count against the plugin's budget")

	status, handle = h.HTTPRequest(0)
	require.Equal(t, int32(0), status)
	assert.Equal(t, int32(http.StatusCreated), h.HTTPStatusCode(handle))
	h.Free(handle)
	assert.Zero(t, h.Live())
}
