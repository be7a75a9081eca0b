package pdk_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdk "github.com/extism/go-pdk"
	"github.com/extism/go-pdk/pdktest"
)

type greeting struct {
	Greeting string `json:"greeting"`
}

func TestExport_ok(t *testing.T) {
	h := pdktest.Start(t)

	rc, output, err := h.Call(func() int32 {
		return pdk.Export(func() (greeting, error) {
			return greeting{Greeting: "Hello, Ada!"}, nil
		})
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(0), rc)
	assert.JSONEq(t, `{"greeting":"Hello, Ada!"}`, string(output))
	assert.False(t, h.HasError(), "error channel must stay unset")
}

func TestExport_err(t *testing.T) {
	h := pdktest.Start(t)

	rc, _, err := h.Call(func() int32 {
		return pdk.Export(func() (greeting, error) {
			return greeting{}, errors.New("Some error message")
		})
	}, nil)

	assert.Equal(t, int32(1), rc)
	assert.EqualError(t, err, "Some error message")
	assert.Equal(t, "Some error message", h.ErrorMessage())
	assert.False(t, h.HasOutput(), "output must stay unset")
}

func TestExport_encodeFailure(t *testing.T) {
	h := pdktest.Start(t)

	rc, _, err := h.Call(func() int32 {
		return pdk.Export(func() (map[string]any, error) {
			return map[string]any{"bad": make(chan int)}, nil
		})
	}, nil)

	assert.Equal(t, int32(1), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode:")
	assert.False(t, h.HasOutput())
}

func TestExportBytes(t *testing.T) {
	h := pdktest.Start(t)

	rc, output, err := h.Call(func() int32 {
		return pdk.ExportBytes(func() ([]byte, error) {
			return pdk.Input(), nil
		})
	}, []byte("raw bytes"))

	require.NoError(t, err)
	assert.Equal(t, int32(0), rc)
	assert.Equal(t, "raw bytes", string(output))

	rc, _, err = h.Call(func() int32 {
		return pdk.ExportBytes(func() ([]byte, error) {
			return nil, errors.New("nope")
		})
	}, nil)
	assert.Equal(t, int32(1), rc)
	assert.EqualError(t, err, "nope")
}
