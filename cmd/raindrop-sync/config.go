package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the settings file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings with the token redacted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.store.Load()
				if err != nil {
					return err
				}
				redacted := cfg.Redacted()
				data, err := a.store.Marshal(&redacted)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.store.Path, data)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a setting",
			Long:  "Set a setting. List values are comma separated. Keys: " + strings.Join(config.SettableKeys(), ", "),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.updateSettings(func(cfg *config.Settings) error {
					return cfg.Set(args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:       "reset-template list|file|filename",
			Short:     "Restore a template to its default",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"list", "file", "filename"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.updateSettings(func(cfg *config.Settings) error {
					return cfg.ResetTemplate(args[0])
				})
			},
		},
	)
	return cmd
}

// updateSettings loads, modifies and saves the settings file.
func (a *app) updateSettings(fn func(cfg *config.Settings) error) error {
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return a.store.Save(cfg)
}
