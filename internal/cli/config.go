package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntohaY/quicklists/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"path": path})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config (file, environment and flags applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, cfg)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.ConfigPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config exists (use --force): %s", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return writeErr(cmd, err)
			}
			cfg := config.DefaultConfig()
			if a.Dir != "" {
				cfg.Dir = a.Dir
			}
			if a.Backend != "" {
				cfg.Backend = a.Backend
			}
			if err := cfg.Save(path); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"written": path})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}
