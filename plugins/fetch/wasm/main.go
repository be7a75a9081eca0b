//go:build wasip1

package main

import "github.com/extism/go-pdk/plugins/fetch"

//go:wasmexport fetch
func fetchExport() int32 {
	return fetch.Fetch()
}

func main() {}
