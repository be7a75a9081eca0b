// Package hello is the hello-world plugin: it greets the name it is given.
//
// The input is either empty, a JSON document {"name": "..."} or a bare name.
// The greeting word can be changed with the "greeting" config key.
package hello

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	pdk "github.com/extism/go-pdk"
)

const (
	defaultName     = "World"
	defaultGreeting = "Hello"

	// ConfigGreeting overrides the greeting word.
	ConfigGreeting = "greeting"
)

// Input is the JSON form of the plugin input.
type Input struct {
	Name string `json:"name" jsonschema:"description=Who to greet"`
}

// Output is the plugin result.
type Output struct {
	Greeting string `json:"greeting" jsonschema:"description=The rendered greeting"`
}

// Schema describes the plugin's input and output.
type Schema struct {
	Input  *jsonschema.Schema `json:"input"`
	Output *jsonschema.Schema `json:"output"`
}

// Greet reads the input, builds the greeting and logs it.
func Greet() (Output, error) {
	pdk.Log(pdk.LogDebug, "Hello function called")

	raw, err := pdk.InputString()
	if err != nil {
		return Output{}, fmt.Errorf("failed to read input: %w", err)
	}

	word, ok := pdk.GetConfig(ConfigGreeting)
	if !ok || word == "" {
		word = defaultGreeting
	}

	greeting := fmt.Sprintf("%s, %s!", word, nameFrom(raw))
	pdk.Logf(pdk.LogInfo, "Created greeting: %s", greeting)

	return Output{Greeting: greeting}, nil
}

// nameFrom picks the name out of the raw input. Input that is not a JSON
// object carrying a name is used as the name itself.
func nameFrom(raw string) string {
	if raw == "" {
		return defaultName
	}

	var in struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil || in.Name == nil {
		return raw
	}
	return *in.Name
}

// Describe returns the JSON Schema of Input and Output.
func Describe() (Schema, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}

	return Schema{
		Input:  reflector.Reflect(&Input{}),
		Output: reflector.Reflect(&Output{}),
	}, nil
}

// Hello is the body of the "hello" export.
func Hello() int32 {
	return pdk.Export(Greet)
}

// HelloSchema is the body of the "hello_schema" export.
func HelloSchema() int32 {
	return pdk.Export(Describe)
}
