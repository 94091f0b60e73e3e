package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/app"
	"github.com/AntohaY/quicklists/internal/config"
	"github.com/AntohaY/quicklists/internal/format"
	"github.com/AntohaY/quicklists/internal/logging"
	"github.com/AntohaY/quicklists/internal/store"
	"github.com/AntohaY/quicklists/internal/tui"
)

type App struct {
	Dir        string
	Backend    string
	ConfigPath string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "quicklists",
		Short:        "Checklists you can reset and reuse",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  quicklists

  # Scriptable commands
  quicklists checklists add "Trip to Paris"
  quicklists items add trip-to-paris Passport
  quicklists items list trip-to-paris --format text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, a)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.Dir, "dir", "", "Path to the data dir (overrides config and $"+config.EnvDir+")")
	cmd.PersistentFlags().StringVar(&a.Backend, "backend", "", "Storage backend: sqlite|file|redis|memory (overrides config and $"+config.EnvBackend+")")
	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", envOr("QUICKLISTS_CONFIG", ""), "Path to config.yaml")
	cmd.PersistentFlags().BoolVar(&a.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&a.Format, "format", envOr("QUICKLISTS_FORMAT", "json"), "Output format (json|text)")

	cmd.AddCommand(newChecklistsCmd(a))
	cmd.AddCommand(newItemsCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newViewCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func loadConfig(a *App) (*config.Config, string, error) {
	path := a.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if a.Dir != "" {
		cfg.Dir = a.Dir
	}
	if a.Backend != "" {
		cfg.Backend = a.Backend
	}
	return cfg, path, nil
}

// openApp loads config, opens storage and loads both collections. The returned
// close function flushes pending saves and must be called.
func openApp(cmd *cobra.Command, a *App, logOut io.Writer) (*app.App, func() error, error) {
	cfg, _, err := loadConfig(a)
	if err != nil {
		return nil, nil, err
	}
	log, logCloser, err := logging.New(cfg.Logging, logOut)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.StoreOptions()
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	qa, err := app.Open(ctx, app.Options{
		Store:  opts,
		Logger: log.WithField("backend", backendLabel(opts.Kind)),
	})
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, err
	}
	closeFn := func() error {
		// Shutdown flush is not tied to the command context.
		return errors.Join(qa.Close(context.Background()), logCloser.Close())
	}
	return qa, closeFn, nil
}

func backendLabel(k store.BackendKind) string {
	if k == "" {
		return string(store.BackendSQLite)
	}
	return string(k)
}

// withApp runs fn against an opened app and reports fn's error or, failing that,
// any error from flushing on close.
func withApp(cmd *cobra.Command, a *App, fn func(*app.App) error) error {
	qa, closeFn, err := openApp(cmd, a, cmd.ErrOrStderr())
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := fn(qa)
	closeErr := closeFn()
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	if closeErr != nil {
		return writeErr(cmd, fmt.Errorf("save: %w", closeErr))
	}
	return nil
}

func runTUI(cmd *cobra.Command, a *App) error {
	// Log lines would corrupt the screen; only log when a file is configured.
	qa, closeFn, err := openApp(cmd, a, nil)
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := tui.Run(tui.Stores{
		Checklists: qa.Checklists,
		Items:      qa.Items,
		SaveState: func() (int, error) {
			return qa.Pending(), qa.SaveErr()
		},
	})
	return errors.Join(runErr, closeFn())
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

type envelope struct {
	Data any `json:"data"`
}

func (e envelope) WriteText(w io.Writer) error {
	if t, ok := e.Data.(format.TextWriter); ok {
		return t.WriteText(w)
	}
	return format.WriteJSON(w, e.Data, true)
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	return format.Write(cmd.OutOrStdout(), envelope{Data: v}, a.Format, a.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
