package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/extism/go-pdk/pdktest"
)

type callOptions struct {
	input        string
	inputFile    string
	config       map[string]string
	vars         map[string]string
	allowedHosts []string
}

func newCallCmd(root *rootOptions) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call <export>",
		Short: "Call a plugin export",
		Long: `Call a plugin export with the given input. The output is written to
stdout. When the export fails its error message is returned instead.

Examples:
  pdksim call hello --input '{"name":"Ada"}'
  pdksim call hello --config greeting=Bonjour --input Grace
  pdksim call fetch --config url=https://example.com --allow-host example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input passed to the export")
	cmd.Flags().StringVar(&opts.inputFile, "input-file", "", "read the input from a file")
	cmd.Flags().StringToStringVar(&opts.config, "config", nil, "config value as key=value (repeatable)")
	cmd.Flags().StringToStringVar(&opts.vars, "var", nil, "preset variable as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.allowedHosts, "allow-host", nil, "host plugins may reach over HTTP (repeatable, globs allowed)")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")

	return cmd
}

func runCall(cmd *cobra.Command, root *rootOptions, opts *callOptions, name string) error {
	exp, ok := exports[name]
	if !ok {
		return fmt.Errorf("unknown export %q, run 'pdksim exports' to list them", name)
	}

	input := []byte(opts.input)
	if opts.inputFile != "" {
		data, err := os.ReadFile(opts.inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = data
	}

	manifest, err := root.loadManifest()
	if err != nil {
		return err
	}

	hostOpts := []pdktest.Option{
		pdktest.WithManifest(manifest),
		pdktest.WithConfig(opts.config),
		pdktest.WithAllowedHosts(opts.allowedHosts...),
		pdktest.WithLogger(root.logger),
	}
	for k, v := range opts.vars {
		hostOpts = append(hostOpts, pdktest.WithVar(k, []byte(v)))
	}

	host, err := pdktest.New(context.Background(), hostOpts...)
	if err != nil {
		return err
	}
	defer host.Close()

	root.logger.Debug("calling export", zap.String("export", name), zap.Int("input_bytes", len(input)))

	rc, output, err := host.Call(exp.fn, input)
	if err != nil {
		root.logger.Debug("export failed", zap.String("export", name), zap.Int32("rc", rc))
		return fmt.Errorf("%s failed with code %d: %w", name, rc, err)
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(output); err != nil {
		return err
	}
	fmt.Fprintln(out)

	if live := host.Live(); live > 0 {
		root.logger.Warn("plugin leaked host memory", zap.Int("allocations", live))
	}

	return nil
}
