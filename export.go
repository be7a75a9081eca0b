package pdk

// Export runs fn as the body of an exported entry point:
//
//	//go:wasmexport greet
//	func greet() int32 { return pdk.Export(greetImpl) }
//
// On success the result is JSON-encoded into the output and 0 is returned.
// If fn fails, or its result cannot be encoded, the error is reported through
// the error channel and 1 is returned. Exactly one of output and error is set.
func Export[T any](fn func() (T, error)) int32 {
	out, err := fn()
	if err != nil {
		SetError(err)
		return 1
	}

	if err := OutputJSON(out); err != nil {
		SetError(err)
		return 1
	}

	return 0
}

// ExportBytes is Export for entry points producing raw output.
func ExportBytes(fn func() ([]byte, error)) int32 {
	out, err := fn()
	if err != nil {
		SetError(err)
		return 1
	}

	Output(out)
	return 0
}
