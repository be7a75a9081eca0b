// Package pdk lets Go code compiled for wasip1 run as an Extism plugin.
//
// All functions talk to the host synchronously through the
// `extism:host/env` imports. Values read from the host are copied into Go
// memory and the host blocks backing them are freed before returning.
package pdk

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/extism/go-pdk/internal/kernel"
)

// LogLevel selects one of the four host log functions.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// Input returns a copy of the invocation input.
func Input() []byte {
	k := kernel.Get()
	length := k.InputLength()
	buf := make([]byte, length)
	if length > 0 {
		k.InputLoad(0, buf)
	}
	return buf
}

// InputString returns the input as a string. Invalid UTF-8 yields a *DecodeError.
func InputString() (string, error) {
	data := Input()
	if !utf8.Valid(data) {
		return "", newDecodeError(errInvalidUTF8)
	}
	return string(data), nil
}

// InputJSON decodes the input into v.
func InputJSON(v any) error {
	data := Input()
	if !utf8.Valid(data) {
		return newDecodeError(errInvalidUTF8)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newDecodeError(err)
	}
	return nil
}

// Output sets data as the invocation output.
func Output(data []byte) {
	kernel.Get().OutputSet(data)
}

// OutputString sets s as the invocation output.
func OutputString(s string) {
	Output([]byte(s))
}

// OutputJSON encodes v and sets it as the output. Nothing is set when
// encoding fails.
func OutputJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return newEncodeError(err)
	}
	Output(data)
	return nil
}

// SetError reports err to the host through the error channel.
func SetError(err error) {
	SetErrorString(err.Error())
}

// SetErrorString reports msg to the host through the error channel.
func SetErrorString(msg string) {
	kernel.Get().ErrorSet([]byte(msg))
}

// GetConfig looks up a host configuration value. ok is false when the key is
// unset or its value is not valid UTF-8.
func GetConfig(key string) (string, bool) {
	offset := kernel.Get().ConfigGet([]byte(key))
	if offset == 0 {
		return "", false
	}

	mem := NewMemory(offset)
	defer mem.Free()

	value, err := mem.ReadString()
	if err != nil {
		return "", false
	}
	return value, true
}

// GetVar returns the value of a plugin variable, or nil if it is unset.
func GetVar(name string) []byte {
	offset := kernel.Get().VarGet([]byte(name))
	if offset == 0 {
		return nil
	}

	mem := NewMemory(offset)
	defer mem.Free()

	return mem.ReadBytes()
}

// GetVarString returns a plugin variable as a string. ok is false when the
// variable is unset or not valid UTF-8.
func GetVarString(name string) (string, bool) {
	value := GetVar(name)
	if value == nil || !utf8.Valid(value) {
		return "", false
	}
	return string(value), true
}

// SetVar stores value under name in the host's variable store.
func SetVar(name string, value []byte) {
	kernel.Get().VarSet([]byte(name), value)
}

// SetVarString stores a string variable.
func SetVarString(name, value string) {
	SetVar(name, []byte(value))
}

// Log emits msg at the given level. Unknown levels are logged as errors.
func Log(level LogLevel, msg string) {
	k := kernel.Get()
	data := []byte(msg)

	switch level {
	case LogDebug:
		k.LogDebug(data)
	case LogInfo:
		k.LogInfo(data)
	case LogWarn:
		k.LogWarn(data)
	default:
		k.LogError(data)
	}
}

// Logf formats according to a format specifier and logs the result.
func Logf(level LogLevel, format string, args ...any) {
	Log(level, fmt.Sprintf(format, args...))
}
