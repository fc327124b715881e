package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Execute runs calendarctl with os.Args.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "calendarctl",
		Short: "Operator tool for the university event calendar",
		Long: `calendarctl runs maintenance tasks against the calendar database:
schema migrations, bootstrap admin seeding, admin account management
and health checks. Database settings come from the same environment
variables as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	logger := func() *slog.Logger {
		return newLogger(logLevel)
	}

	root.AddCommand(
		newMigrateCommand(logger),
		newBootstrapCommand(logger),
		newAdminCommand(logger),
		newHealthcheckCommand(),
	)
	return root
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
