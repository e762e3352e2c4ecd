// Package cli implements the ide command line client. It works directly on
// the configured database, so it needs no running server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/stackslab/ide/internal/app"
	"github.com/stackslab/ide/internal/config"
	"github.com/stackslab/ide/internal/domain/workspace"
)

// Version is set at build time.
var Version = "dev"

var errNotFound = errors.New("not found")

// env carries the state shared by every subcommand of one invocation.
type env struct {
	cfgPath string
	tenant  string
	noPause bool

	cfg   config.Config
	app   *app.App
	store *workspace.Store
	out   *printer
}

func (e *env) close() {
	if e.app != nil {
		_ = e.app.Close()
		e.app = nil
	}
}

// open loads config and the tenant's store.
func (e *env) open(cmd *cobra.Command) error {
	var err error
	if e.cfgPath != "" {
		e.cfg, err = config.LoadFile(e.cfgPath)
	} else {
		e.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if e.noPause {
		e.cfg.Compiler.PauseScale = 0
	}
	if e.tenant == "" {
		e.tenant = e.cfg.Auth.DefaultTenant
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: max(config.ParseLevel(e.cfg.Log.Level), slog.LevelWarn),
	}))
	e.app, err = app.Open(cmd.Context(), e.cfg, logger)
	if err != nil {
		return err
	}
	e.store, err = e.app.Registry.Get(cmd.Context(), e.tenant)
	return err
}

// newRoot builds the command tree and the env its commands share.
func newRoot() (*cobra.Command, *env) {
	e := &env{}
	root := &cobra.Command{
		Use:   "ide",
		Short: "StacksLab IDE - Clarity workspace from the command line",
		Long: `ide edits, compiles and analyzes Clarity smart contracts stored in the
StacksLab workspace database. The server and this CLI share the same data.

Quick Start:
  ide project list                 # Projects of the current tenant
  ide file create counter.clar     # New file in the active project
  ide compile counter.clar         # Simulated compilation
  ide debug counter.clar --quick   # AI analysis (needs an OpenRouter key)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.out = newPrinter(cmd.OutOrStdout())
			if cmd.Name() == "version" {
				return nil
			}
			return e.open(cmd)
		},
	}
	root.PersistentFlags().StringVar(&e.cfgPath, "config", "", "config file (default $IDE_CONFIG_PATH)")
	root.PersistentFlags().StringVar(&e.tenant, "tenant", "", "tenant id (default auth.default_tenant)")
	root.PersistentFlags().BoolVar(&e.noPause, "no-pause", false, "skip compiler narration pauses")

	root.AddCommand(
		newProjectCmd(e),
		newFileCmd(e),
		newCompileCmd(e),
		newDebugCmd(e),
		newTerminalCmd(e),
		newKeyCmd(e),
		newTokenCmd(e),
		newReportCmd(e),
		newVersionCmd(),
	)
	return root, e
}

// Run executes the CLI with args and releases the database afterwards.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, e := newRoot()
	defer e.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ide version %s\n", Version)
		},
	}
}

// resolveFile finds a file by id, then by name in the active project.
func (e *env) resolveFile(ref string) (workspace.File, error) {
	if f, ok := e.store.File(ref); ok {
		return f, nil
	}
	if f, ok := e.store.FindFileByName(ref); ok {
		return f, nil
	}
	return workspace.File{}, fmt.Errorf("file %q: %w", ref, errNotFound)
}

// resolveProject finds a project by id, then by name.
func (e *env) resolveProject(ref string) (workspace.ProjectSummary, error) {
	projects := e.store.ListProjects()
	for _, p := range projects {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range projects {
		if p.Name == ref {
			return p, nil
		}
	}
	return workspace.ProjectSummary{}, fmt.Errorf("project %q: %w", ref, errNotFound)
}

// follow prints terminal lines as the store produces them until the
// returned function is called.
func (e *env) follow() func() {
	return e.store.Subscribe(func(ev workspace.Event) {
		if ev.Type == workspace.EventTerminal && ev.Entry != nil {
			e.out.entry(*ev.Entry)
		}
	})
}
