package cmd

import (
	"fmt"
	"strings"

	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var hanziCmd = &cobra.Command{
	Use:   "hanzi <text>",
	Short: "Show pinyin with tone marks for Chinese characters",
	Long: `Look up the reading of every Chinese character in the text and print it
with tone marks.

Examples:
  hanzi 你好
  hanzi 中国 --all
  hanzi 中国 --line    # zhōng guó`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHanzi,
}

var (
	hanziAll  bool
	hanziLine bool
)

func init() {
	rootCmd.AddCommand(hanziCmd)
	hanziCmd.Flags().BoolVarP(&hanziAll, "all", "a", false, "show every known reading")
	hanziCmd.Flags().BoolVarP(&hanziLine, "line", "l", false, "print only the pinyin on one line")
}

func runHanzi(cmd *cobra.Command, args []string) error {
	parser := pinyin.NewParser()
	out := cmd.OutOrStdout()
	input := strings.Join(args, "")

	readings := parser.Annotate(input)
	if len(readings) == 0 {
		return fmt.Errorf("no Chinese characters in %q", input)
	}

	if hanziLine {
		pretty := lo.Map(readings, func(r pinyin.Reading, _ int) string { return r.Pretty })
		fmt.Fprintln(out, strings.Join(pretty, " "))
		return nil
	}

	width := 0
	for _, r := range readings {
		width = max(width, runewidth.StringWidth(r.Pretty))
	}

	for _, r := range readings {
		line := fmt.Sprintf("%s  %s  %s", r.Hanzi, runewidth.FillRight(r.Pretty, width), r.Numbered)
		if hanziAll && len(r.All) > 1 {
			others := lo.Map(r.All[1:], func(n string, _ int) string { return pinyin.Prettify(n) })
			line += "  (" + strings.Join(others, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
