package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/f3rmion/prettypinyin/internal/tui"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i", "ui"},
	Short:   "Launch interactive TUI",
	Long: `Launch an interactive terminal UI that converts pinyin as you type.

Modes (switch with Tab):
  Tone marks    ni3 hao3 → nǐ hǎo
  Tone numbers  nǐ hǎo → ni3 hao3
  Hanzi         你好 → nǐ hǎo

Controls:
  Tab     Switch mode
  Ctrl+Y  Copy result
  Esc     Quit`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(
		tui.NewApp(pinyin.Options{NeutralFive: settings.NeutralFive}),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
