// Package counter keeps a call counter in the host variable store.
package counter

import (
	"encoding/binary"
	"fmt"

	pdk "github.com/extism/go-pdk"
)

// VarCount holds the counter as a little-endian u32.
const VarCount = "count"

// Result is the plugin output.
type Result struct {
	Count uint32 `json:"count"`
}

// Increment bumps the stored counter and returns the new value.
func Increment() (Result, error) {
	count, err := getU32(VarCount)
	if err != nil {
		return Result{}, err
	}

	count++
	setU32(VarCount, count)

	return Result{Count: count}, nil
}

// Count is the body of the "count" export.
func Count() int32 {
	return pdk.Export(Increment)
}

func getU32(name string) (uint32, error) {
	bytes := pdk.GetVar(name)
	if bytes == nil {
		return 0, nil
	} else if len(bytes) != 4 {
		return 0, fmt.Errorf("expected a byte slice of length 4 but got %d", len(bytes))
	}

	return binary.LittleEndian.Uint32(bytes), nil
}

func setU32(name string, value uint32) {
	pdk.SetVar(name, binary.LittleEndian.AppendUint32(nil, value))
}
