//go:build wasip1

package main

import "github.com/extism/go-pdk/plugins/logs"

//go:wasmexport logs
func logsExport() int32 {
	return logs.Run()
}

func main() {}
