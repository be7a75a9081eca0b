package fetch_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extism/go-pdk/pdktest"
	"github.com/extism/go-pdk/plugins/fetch"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":1,"title":"delectus aut autem"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := upstream(t)
	h := pdktest.Start(t,
		pdktest.WithConfig(map[string]string{fetch.ConfigURL: srv.URL + "/todos/1"}),
		pdktest.WithAllowedHosts("127.0.0.1"),
		pdktest.WithHTTPClient(srv.Client()),
	)

	rc, output, err := h.Call(fetch.Fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(0), rc)

	var result fetch.Result
	require.NoError(t, json.Unmarshal(output, &result))
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "application/json", result.ContentType)
	assert.JSONEq(t, `{"id":1,"title":"delectus aut autem"}`, result.Body)
	assert.Equal(t, http.StatusOK, h.LastStatusCode)
	pdktest.AssertNoLeaks(t, h)
}

func TestFetch_errors(t *testing.T) {
	srv := upstream(t)

	tests := []struct {
		name     string
		opts     []pdktest.Option
		expected string
	}{
		{
			name:     "missing url",
			expected: `config key "url" is not set`,
		},
		{
			name: "host not allowed",
			opts: []pdktest.Option{
				pdktest.WithConfig(map[string]string{fetch.ConfigURL: srv.URL}),
				pdktest.WithHTTPClient(srv.Client()),
			},
			expected: "HTTP request failed",
		},
		{
			name: "invalid url",
			opts: []pdktest.Option{
				pdktest.WithConfig(map[string]string{fetch.ConfigURL: "not a url"}),
			},
			expected: "invalid HTTP request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := pdktest.Start(t, tt.opts...)

			rc, _, err := h.Call(fetch.Fetch, nil)

			assert.Equal(t, int32(1), rc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
			pdktest.AssertNoLeaks(t, h)
		})
	}
}
