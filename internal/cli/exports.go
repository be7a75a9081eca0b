package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/extism/go-pdk/plugins/counter"
	"github.com/extism/go-pdk/plugins/fetch"
	"github.com/extism/go-pdk/plugins/hello"
	"github.com/extism/go-pdk/plugins/logs"
)

// export is an entry point linked into pdksim under its wasm export name.
type export struct {
	fn          func() int32
	description string
}

var exports = map[string]export{
	"hello":        {fn: hello.Hello, description: "greet the name given as input"},
	"hello_schema": {fn: hello.HelloSchema, description: "JSON Schema of the hello input and output"},
	"count":        {fn: counter.Count, description: "increment the count variable"},
	"fetch":        {fn: fetch.Fetch, description: "GET the url from config"},
	"logs":         {fn: logs.Run, description: "log a line at every severity"},
}

func exportNames() []string {
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List the plugin exports pdksim can call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range exportNames() {
				fmt.Fprintf(out, "%-14s %s\n", name, exports[name].description)
			}
			return nil
		},
	}
}
