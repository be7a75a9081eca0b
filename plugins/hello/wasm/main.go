//go:build wasip1

// Command wasm builds the hello plugin:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o hello.wasm ./plugins/hello/wasm
package main

import "github.com/extism/go-pdk/plugins/hello"

//go:wasmexport hello
func helloExport() int32 {
	return hello.Hello()
}

//go:wasmexport hello_schema
func helloSchemaExport() int32 {
	return hello.HelloSchema()
}

func main() {}
