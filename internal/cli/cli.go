// Package cli implements the modelgraph command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/buildinfo"
	"github.com/matzehuels/modelgraph/pkg/config"
)

// appName is the application name used for display and config lookup.
const appName = "modelgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	flags   globalFlags
	metrics *prometheus.Registry

	// metricsFile is resolved from --metrics-file or the config once a
	// command has opened its stack.
	metricsFile string
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath  string
	metricsFile string
	load        []string // extra transformation files
	models      []string // extra active models
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which goes to stdout by default.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Modelgraph finds transformation paths between data models",
		Long: `Modelgraph keeps a graph of versioned data models and the transformations
between them, and finds chains of transformations that convert one model into another.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.configPath, "config", "c", "", "config file (TOML)")
	pf.StringVar(&c.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")
	pf.StringArrayVarP(&c.flags.load, "load", "l", nil, "load a transformation file or directory (repeatable)")
	pf.StringArrayVarP(&c.flags.models, "model", "m", nil, "activate a model name:version (repeatable)")

	root.AddCommand(c.pathCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.filesCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// writeMetrics writes the metrics gathered by the command in the
// Prometheus text format.
func (c *CLI) writeMetrics() error {
	if c.metricsFile == "" || c.metrics == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.metrics); err != nil {
		return err
	}
	c.Logger.Debug("metrics written", "path", c.metricsFile)
	return nil
}
