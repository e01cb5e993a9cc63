package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/vibeproxy/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore()
		if err != nil {
			return err
		}

		fmt.Println(store.Path())

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	store, err := config.NewStore()
	if err != nil {
		return err
	}

	if config.FileExists(store.Path()) {
		fmt.Printf("Config already exists at %s.\n", styleValue.Render(store.Path()))
		return nil
	}

	// Load yields the defaults when the file is absent.
	cfg, err := store.Load()
	if err != nil {
		return err
	}

	if err := store.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote default config to %s.\n", styleValue.Render(store.Path()))

	return nil
}
