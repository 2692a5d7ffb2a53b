package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/f3rmion/prettypinyin/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration to the config file
($HOME/.config/prettypinyin/config.yaml unless --config is given).

An existing file is left alone unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
