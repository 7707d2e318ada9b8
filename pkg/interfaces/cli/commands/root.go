// Package commands wires configuration, the catalog loader and the
// presentation layers into the pricelist command line.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/pricelist/pkg/interfaces/cli/output"
)

// BuildInfo is stamped at link time
type BuildInfo struct {
	Version string
	Commit  string
}

// devVersion is the version of unstamped builds
const devVersion = "dev"

// AssetVersion names the service worker cache of this build. Unstamped builds
// return "" so the server picks a fresh value per process and browsers drop
// the previous app shell.
func (b BuildInfo) AssetVersion() string {
	if b.Version == "" || b.Version == devVersion {
		return ""
	}
	if b.Commit != "" {
		return b.Version + "-" + b.Commit
	}
	return b.Version
}

// NewRootCommand assembles the pricelist command tree
func NewRootCommand(info BuildInfo) *cobra.Command {
	var global GlobalConfig

	root := &cobra.Command{
		Use:           "pricelist",
		Short:         "Maintenance price list viewer",
		Long:          "Serves and prints maintenance price lists filtered by machine model and service hours.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			global.Stderr = cmd.ErrOrStderr()
		},
	}
	root.PersistentFlags().StringVar(&global.ConfigFile, "config", "", "path to a YAML config file (default: ./pricelist.yaml, /etc/pricelist/pricelist.yaml)")
	root.PersistentFlags().StringVar(&global.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(&global, info),
		newListCommand(&global),
		newVersionCommand(info),
	)
	return root
}

func newServeCommand(global *GlobalConfig, info BuildInfo) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the price list web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(ServeConfig{
				Global:  *global,
				Port:    port,
				Version: info.AssetVersion(),
			}).Execute(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func newListCommand(global *GlobalConfig) *cobra.Command {
	var (
		machine string
		hour    string
		config  ListConfig
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the price list for a machine and hour ceiling",
		Long: "Loads the catalog once and prints the items of the selected machine up to the\n" +
			"selected hour. Without flags the first listed machine and hour are used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Global = *global
			config.Out = cmd.OutOrStdout()
			if cmd.Flags().Changed("machine") {
				config.Machine = &machine
			}
			if cmd.Flags().Changed("hour") {
				config.Hour = &hour
			}
			return NewListCommand(config).Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&machine, "machine", "m", "", "machine model")
	cmd.Flags().StringVar(&hour, "hour", "", "hour ceiling, e.g. 500 or 0500H; empty for none")
	cmd.Flags().StringVarP(&config.Format, "format", "f", output.FormatText,
		fmt.Sprintf("output format: %s", strings.Join(output.Formats, ", ")))
	cmd.Flags().StringVarP(&config.OutputFile, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&config.Title, "title", "Tabela de Manutenção", "document title for xlsx, pdf and html")
	return cmd
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version := info.Version
			if version == "" {
				version = devVersion
			}
			if info.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "pricelist %s (%s)\n", version, info.Commit)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pricelist %s\n", version)
		},
	}
}
