// Package cli implements the pdksim command line: it runs plugin exports
// linked into the binary against the simulated host.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/extism/go-pdk/pdktest"
)

type rootOptions struct {
	manifest string
	verbose  bool

	v      *viper.Viper
	logger *zap.Logger
}

// Execute runs the pdksim command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call returns independent state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pdksim",
		Short: "Run PDK plugins against a simulated Extism host",
		Long: `pdksim runs the plugin exports compiled into it against an in-process
Extism host. The host serves config, variables, logging and HTTP the same
way a real host does, so plugins can be tried without building wasm.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.manifest, "manifest", "", "manifest file (yaml or json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log host activity to stderr")

	cmd.AddCommand(newExportsCmd())
	cmd.AddCommand(newCallCmd(opts))

	return cmd
}

// initialize reads the manifest file and PDKSIM_* environment variables.
func (o *rootOptions) initialize() error {
	if o.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		o.logger = logger
	} else {
		o.logger = zap.NewNop()
	}

	o.v = viper.New()
	o.v.SetEnvPrefix("PDKSIM")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper already knows.
	for _, key := range []string{"allowed_hosts", "timeout_ms", "memory.max_var_bytes", "memory.max_http_response_bytes"} {
		if err := o.v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if o.manifest == "" {
		return nil
	}

	o.v.SetConfigFile(o.manifest)
	if err := o.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	o.logger.Debug("loaded manifest", zap.String("file", o.v.ConfigFileUsed()))
	return nil
}

// loadManifest decodes the merged manifest, environment and defaults.
func (o *rootOptions) loadManifest() (pdktest.Manifest, error) {
	var m pdktest.Manifest
	if err := o.v.Unmarshal(&m); err != nil {
		return m, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}
