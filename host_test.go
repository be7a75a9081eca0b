package pdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdk "github.com/extism/go-pdk"
	"github.com/extism/go-pdk/pdktest"
)

func TestInput(t *testing.T) {
	h := pdktest.Start(t)

	h.SetInput(nil)
	assert.Empty(t, pdk.Input())

	h.SetInput([]byte("hello world"))
	assert.Equal(t, []byte("hello world"), pdk.Input())

	s, err := pdk.InputString()
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)
}

func TestInputStringInvalidUTF8(t *testing.T) {
	h := pdktest.Start(t)
	h.SetInput([]byte{0xc3, 0x28})

	_, err := pdk.InputString()
	var decodeErr *pdk.DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	var v any
	assert.ErrorAs(t, pdk.InputJSON(&v), &decodeErr)
}

func TestInputJSON(t *testing.T) {
	h := pdktest.Start(t)

	h.SetInput([]byte(`{"name":"Ada"}`))
	var in struct {
		Name string `json:"name"`
	}
	require.NoError(t, pdk.InputJSON(&in))
	assert.Equal(t, "Ada", in.Name)

	h.SetInput([]byte("Grace"))
	var decodeErr *pdk.DecodeError
	assert.ErrorAs(t, pdk.InputJSON(&in), &decodeErr)
}

func TestOutput(t *testing.T) {
	h := pdktest.Start(t)

	pdk.OutputString("plain")
	assert.Equal(t, "plain", string(h.Output()))

	require.NoError(t, pdk.OutputJSON(map[string]int{"count": 3}))
	assert.JSONEq(t, `{"count": 3}`, string(h.Output()))
}

func TestOutputJSONEncodeFailureSetsNothing(t *testing.T) {
	h := pdktest.Start(t)

	err := pdk.OutputJSON(func() {})

	var encodeErr *pdk.EncodeError
	assert.ErrorAs(t, err, &encodeErr)
	assert.False(t, h.HasOutput())
}

func TestSetError(t *testing.T) {
	h := pdktest.Start(t)

	pdk.SetErrorString("Some error message")
	assert.True(t, h.HasError())
	assert.Equal(t, "Some error message", h.ErrorMessage())
}

func TestConfig(t *testing.T) {
	params := map[string]string{
		"hello": "hello",
		"":      "<unset by host>",
	}

	for k, v := range params {
		opts := []pdktest.Option{}
		if k != "" {
			opts = append(opts, pdktest.WithConfig(map[string]string{"thing": k}))
		}

		h := pdktest.Start(t, opts...)

		thing, ok := pdk.GetConfig("thing")
		if !ok {
			thing = "<unset by host>"
		}

		assert.Equal(t, v, thing)
		pdktest.AssertNoLeaks(t, h)
	}
}

func TestConfigInvalidUTF8IsAbsent(t *testing.T) {
	pdktest.Start(t, pdktest.WithConfig(map[string]string{"bin": "\xff"}))

	_, ok := pdk.GetConfig("bin")
	assert.False(t, ok)
}

func TestVar(t *testing.T) {
	h := pdktest.Start(t, pdktest.WithVar("a", []byte{10, 0, 0, 0}))

	assert.Nil(t, pdk.GetVar("missing"))
	_, ok := pdk.GetVarString("missing")
	assert.False(t, ok)

	assert.Equal(t, []byte{10, 0, 0, 0}, pdk.GetVar("a"))

	pdk.SetVar("a", []byte{20, 0, 0, 0})
	actual, _ := h.Var("a")
	assert.Equal(t, []byte{20, 0, 0, 0}, actual)

	pdk.SetVarString("greeting", "hi")
	s, ok := pdk.GetVarString("greeting")
	assert.True(t, ok)
	assert.Equal(t, "hi", s)

	pdk.SetVar("empty", nil)
	assert.NotNil(t, pdk.GetVar("empty"), "an empty variable is not an absent one")

	pdktest.AssertNoLeaks(t, h)
}

func TestLog(t *testing.T) {
	h := pdktest.Start(t)

	pdk.Log(pdk.LogDebug, "this is a debug log")
	pdk.Log(pdk.LogInfo, "this is an info log")
	pdk.Log(pdk.LogWarn, "this is a warning log")
	pdk.Logf(pdk.LogError, "this is an %s log", "error")

	expected := []pdktest.LogEntry{
		{Level: pdk.LogDebug, Message: "this is a debug log"},
		{Level: pdk.LogInfo, Message: "this is an info log"},
		{Level: pdk.LogWarn, Message: "this is a warning log"},
		{Level: pdk.LogError, Message: "this is an error log"},
	}
	assert.Equal(t, expected, h.Logs())
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "debug", pdk.LogDebug.String())
	assert.Equal(t, "error", pdk.LogError.String())
	assert.Equal(t, "LogLevel(9)", pdk.LogLevel(9).String())
}
