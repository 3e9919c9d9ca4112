// Command izposoja runs the costume rental server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/izposoja/internal/config"
)

// rootOptions holds the global flags. Flags that were set override the
// configuration file and the environment.
type rootOptions struct {
	configPath string
	dbPath     string
	addr       string
	logPath    string
	adminUser  string

	cfg config.Config
}

func main() {
	if err := newRootCommand(&rootOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "izposoja",
		Short:         "Costume rental server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.dbPath, "db", "d", defaults.DBPath, "SQLite database path")
	flags.StringVarP(&opts.addr, "addr", "a", defaults.Addr, "listen address")
	flags.StringVarP(&opts.logPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	flags.StringVarP(&opts.adminUser, "user", "u", defaults.AdminUser, "admin username on first run")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newOverdueCommand(opts))

	return cmd
}

// load reads the configuration and applies the flags the user set.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("log") {
		cfg.LogPath = o.logPath
	}
	if flags.Changed("user") {
		cfg.AdminUser = o.adminUser
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}
