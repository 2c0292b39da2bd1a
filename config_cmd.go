package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return errors.New("no configuration loaded")
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), resolvedCfg)
	}

	return config.RenderEffective(resolvedCfg, resolvedCfgPath, cmd.OutOrStdout())
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if err := config.InitFile(resolvedCfgPath); err != nil {
		return err
	}

	statusf("Wrote %s\n", resolvedCfgPath)

	return nil
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Set one config value, e.g. 'api.base_url https://shop.example.com'",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	}
}

func runConfigSet(_ *cobra.Command, args []string) error {
	section, key, ok := strings.Cut(args[0], ".")
	if !ok || section == "" || key == "" {
		return fmt.Errorf("invalid key %q: expected section.key", args[0])
	}

	if err := config.SetKey(resolvedCfgPath, section, key, args[1]); err != nil {
		return err
	}

	statusf("Set %s.%s in %s\n", section, key, resolvedCfgPath)

	return nil
}
