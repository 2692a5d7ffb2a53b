package cmd

import (
	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var numberizeCmd = &cobra.Command{
	Use:     "numberize [text...]",
	Aliases: []string{"num"},
	Short:   "Turn pinyin with tone marks back into tone numbers",
	Long: `Convert pinyin with tone marks into CC-CEDICT style numbered pinyin.

Examples:
  prettypinyin numberize nǐ hǎo           → ni3 hao3
  prettypinyin numberize --neutral-five "mā ma"  → ma1 ma5`,
	Args: cobra.ArbitraryArgs,
	RunE: runNumberize,
}

func init() {
	rootCmd.AddCommand(numberizeCmd)
	numberizeCmd.Flags().Bool("neutral-five", false, "write neutral-tone syllables with a 5")
	viper.BindPFlag("neutral_five", numberizeCmd.Flags().Lookup("neutral-five"))
}

func runNumberize(cmd *cobra.Command, args []string) error {
	opts := pinyin.Options{NeutralFive: settings.NeutralFive}
	return convertInput(cmd, args, func(line string) string {
		return pinyin.NumberizeWith(line, opts)
	})
}
