// Package cmd contains all CLI commands for prettypinyin.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/f3rmion/prettypinyin/internal/batch"
	"github.com/f3rmion/prettypinyin/internal/clipboard"
	"github.com/f3rmion/prettypinyin/internal/config"
	"github.com/f3rmion/prettypinyin/internal/logger"
	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	settings *config.Config
	log      *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prettypinyin [text...]",
	Short: "Turn tone-number pinyin into pinyin with tone marks",
	Long: `prettypinyin converts pinyin written with tone numbers, as used by
CC-CEDICT, into pinyin with tone marks:

  prettypinyin ni3 hao3          → nǐ hǎo
  prettypinyin "nu:3 lv4"        → nǚ lǜ
  cat words.txt | prettypinyin   → one converted line per input line

Syllables are separated by spaces and end in a tone number 1-5. Syllables
without a valid tone number are left as they are.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setup,
	RunE:              runPrettify,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/prettypinyin/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent line conversions (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: pretty or json")
	rootCmd.PersistentFlags().Bool("copy", false, "copy the result to the clipboard")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("copy", rootCmd.PersistentFlags().Lookup("copy"))

	viper.SetEnvPrefix("PRETTYPINYIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// configPath returns the config file path.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return config.FileName
	}
	return filepath.Join(dir, config.FileName)
}

// loadSettings layers flags and PRETTYPINYIN_* env vars over the config file.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}

	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("anki_field", cfg.AnkiField)
	viper.SetDefault("copy", cfg.Copy)
	viper.SetDefault("neutral_five", cfg.NeutralFive)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads settings and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings = cfg
	log = logger.Init(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	log.Debug("loaded config", slog.String("path", configPath()), slog.Int("workers", cfg.Workers))
	return nil
}

func runPrettify(cmd *cobra.Command, args []string) error {
	return convertInput(cmd, args, pinyin.Prettify)
}

// convertInput converts the joined arguments, or stdin line by line when no
// arguments are given and stdin is not a terminal.
func convertInput(cmd *cobra.Command, args []string, fn batch.Func) error {
	out := cmd.OutOrStdout()

	var copied bytes.Buffer
	if settings.Copy {
		out = io.MultiWriter(out, &copied)
	}

	if len(args) > 0 {
		fmt.Fprintln(out, fn(strings.Join(args, " ")))
	} else {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			return cmd.Help()
		}
		err := batch.Convert(cmd.Context(), in, out, fn, batch.Options{
			Workers: settings.Workers,
			Log:     log,
		})
		if err != nil {
			return err
		}
	}

	if settings.Copy {
		return copyResult(strings.TrimSuffix(copied.String(), "\n"))
	}
	return nil
}

func copyResult(text string) error {
	if err := clipboard.Write(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	log.Info("copied to clipboard")
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
