// Package rootcmd wires the root cobra.Command for the focus CLI binary.
package rootcmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	breakdowncmd "github.com/go-ports/focusflow/cmd/focus/breakdown"
	completecmd "github.com/go-ports/focusflow/cmd/focus/complete"
	configcmd "github.com/go-ports/focusflow/cmd/focus/config"
	deletecmd "github.com/go-ports/focusflow/cmd/focus/delete"
	historycmd "github.com/go-ports/focusflow/cmd/focus/history"
	initcmd "github.com/go-ports/focusflow/cmd/focus/init"
	mcpcmd "github.com/go-ports/focusflow/cmd/focus/mcp"
	moodcmd "github.com/go-ports/focusflow/cmd/focus/mood"
	plancmd "github.com/go-ports/focusflow/cmd/focus/plan"
	prunecmd "github.com/go-ports/focusflow/cmd/focus/prune"
	reindexcmd "github.com/go-ports/focusflow/cmd/focus/reindex"
	searchcmd "github.com/go-ports/focusflow/cmd/focus/search"
	servecmd "github.com/go-ports/focusflow/cmd/focus/serve"
	"github.com/go-ports/focusflow/cmd/focus/shared"
	showcmd "github.com/go-ports/focusflow/cmd/focus/show"
	statscmd "github.com/go-ports/focusflow/cmd/focus/stats"
	xpcmd "github.com/go-ports/focusflow/cmd/focus/xp"
	"github.com/go-ports/focusflow/internal/buildinfo"
)

// New creates and returns the root cobra.Command for the focus CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "focus",
		Short:         "FocusFlow: break tasks into focus-sized steps and track your progress",
		Version:       buildinfo.Summary(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd, ctx.LogLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(
		&ctx.Home, "home", "",
		"Override focus home directory (default: $FOCUS_HOME env → persisted config → ~/.focusflow)",
	)
	root.PersistentFlags().StringVar(
		&ctx.LogLevel, "log-level", "warn",
		"Minimum log level written to stderr: debug, info, warn or error",
	)

	root.AddCommand(
		initcmd.New(ctx).Cmd(),
		breakdowncmd.New(ctx).Cmd(),
		plancmd.New(ctx).Cmd(),
		completecmd.New(ctx).Cmd(),
		historycmd.New(ctx).Cmd(),
		showcmd.New(ctx).Cmd(),
		deletecmd.New(ctx).Cmd(),
		prunecmd.New(ctx).Cmd(),
		statscmd.New(ctx).Cmd(),
		moodcmd.New(ctx).Cmd(),
		searchcmd.New(ctx).Cmd(),
		xpcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		reindexcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		servecmd.New(ctx).Cmd(),
	)

	return root
}

// setupLogging installs a text slog handler on stderr at the requested level.
func setupLogging(cmd *cobra.Command, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return nil
}
