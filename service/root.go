// Package service implements the svyasa command line: the HTTP server and
// the database maintenance commands.
package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"svyasa/app/config"
	"svyasa/app/repositories"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags "-X svyasa/service.Version=...".
var Version = "dev"

// NewRootCommand builds the svyasa command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "svyasa",
		Short:         "Anonymous, ephemeral secrets forum",
		Long:          "svyasa serves an anonymous forum whose posts disappear 24 hours after they are written.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to a config file (default ./config.yml)")

	root.AddCommand(
		newServeCommand(),
		newInitCommand(),
		newCleanCommand(),
		newBackupCommand(),
		newRestoreCommand(),
		newSeedCommand(),
		newHashPasswordCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "svyasa version %s\n", Version)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openStore opens the configured database.
func openStore(cfg *config.Config, log *zap.Logger) (*repositories.Store, error) {
	path := cfg.DB.Path
	if cfg.DB.InMemory {
		path = ""
	}
	return repositories.NewStore(path, log)
}

// diskPath returns the on-disk database path, refusing in-memory configs.
func diskPath(cfg *config.Config) (string, error) {
	if cfg.DB.InMemory {
		return "", errors.New("db.in_memory is set; there is no database on disk")
	}
	return cfg.DB.Path, nil
}

// confirm asks a yes/no question on the command's streams. Anything but
// y or yes declines.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
