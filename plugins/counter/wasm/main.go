//go:build wasip1

package main

import "github.com/extism/go-pdk/plugins/counter"

//go:wasmexport count
func count() int32 {
	return counter.Count()
}

func main() {}
