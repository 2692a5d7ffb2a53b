package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/f3rmion/prettypinyin/internal/anki"
	"github.com/spf13/cobra"
)

var ankiCmd = &cobra.Command{
	Use:   "anki",
	Short: "Work with Anki decks",
	Long:  `Commands for reading Anki .apkg files and rewriting their pinyin with tone marks.`,
}

var ankiInspectCmd = &cobra.Command{
	Use:   "inspect <file.apkg>",
	Short: "Inspect an Anki deck",
	Long: `Inspect an Anki .apkg file to see its structure:
  - Decks
  - Note types (models) and their fields
  - Sample notes

Examples:
  prettypinyin anki inspect chinese.apkg
  prettypinyin anki inspect chinese.apkg --field Pinyin -n 20`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiInspect,
}

var ankiPrettifyCmd = &cobra.Command{
	Use:   "prettify <file.apkg>",
	Short: "Rewrite a pinyin field with tone marks",
	Long: `Read an Anki deck, convert the numbered pinyin in one field of every
note to tone marks and write the result to a new .apkg file.

The field defaults to anki_field from the config file ("Pinyin"). When the
deck has no such field, the first field holding numbered pinyin is used.

Examples:
  prettypinyin anki prettify chinese.apkg
  prettypinyin anki prettify chinese.apkg --field Reading
  prettypinyin anki prettify chinese.apkg --output pretty.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiPrettify,
}

var (
	ankiInspectLimit  int
	ankiInspectField  string
	ankiPrettifyField string
	ankiPrettifyOut   string
)

// numberedPattern matches a numbered pinyin syllable such as hao3 or nu:3.
var numberedPattern = regexp.MustCompile(`(?i)\b[a-zü:]+[1-5]\b`)

func init() {
	rootCmd.AddCommand(ankiCmd)
	ankiCmd.AddCommand(ankiInspectCmd)
	ankiCmd.AddCommand(ankiPrettifyCmd)

	ankiInspectCmd.Flags().IntVarP(&ankiInspectLimit, "limit", "n", 5, "Number of sample notes to show")
	ankiInspectCmd.Flags().StringVarP(&ankiInspectField, "field", "f", "", "Show only this field of the sample notes")

	ankiPrettifyCmd.Flags().StringVarP(&ankiPrettifyField, "field", "f", "", "Field name holding numbered pinyin")
	ankiPrettifyCmd.Flags().StringVarP(&ankiPrettifyOut, "output", "o", "", "Output file (default <deck>_pretty.apkg)")
}

func runAnkiInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	pkg, err := anki.OpenPackage(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	fmt.Fprint(out, pkg.Summary())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Field Details:")
	for _, model := range pkg.Models {
		fmt.Fprintf(out, "  %s:\n", model.Name)
		for _, field := range model.Fields {
			fmt.Fprintf(out, "    [%d] %s\n", field.Ord, field.Name)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Sample Notes (first %d):\n", ankiInspectLimit)
	for i, note := range pkg.Notes {
		if i >= ankiInspectLimit {
			break
		}

		modelName := "unknown"
		if model := pkg.GetModel(note); model != nil {
			modelName = model.Name
		}

		fmt.Fprintf(out, "\n  Note %d (Model: %s):\n", note.ID, modelName)
		if ankiInspectField != "" {
			value := pkg.GetFieldValue(note, ankiInspectField)
			fmt.Fprintf(out, "    %s: %s\n", ankiInspectField, truncate(anki.StripHTML(value), 100))
			continue
		}
		fieldNames := pkg.GetFieldNames(note)
		for j, value := range note.Fields {
			fieldName := fmt.Sprintf("Field %d", j)
			if j < len(fieldNames) {
				fieldName = fieldNames[j]
			}
			fmt.Fprintf(out, "    %s: %s\n", fieldName, truncate(anki.StripHTML(value), 100))
		}
	}

	return nil
}

func runAnkiPrettify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	pkg, err := anki.OpenPackage(ctx, path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	log.Info("opened deck", slog.String("path", path), slog.Int("notes", len(pkg.Notes)))

	field := ankiPrettifyField
	if field == "" {
		field = settings.AnkiField
	}

	changed, err := pkg.PrettifyField(field)
	if errors.Is(err, anki.ErrFieldNotFound) && ankiPrettifyField == "" {
		detected := detectPinyinField(pkg)
		if detected == "" {
			return fmt.Errorf("could not find a pinyin field, use --field to specify: %w", err)
		}
		log.Info("auto-detected pinyin field", slog.String("field", detected))
		field = detected
		changed, err = pkg.PrettifyField(field)
	}
	if err != nil {
		return err
	}

	outputPath := ankiPrettifyOut
	if outputPath == "" {
		ext := filepath.Ext(path)
		outputPath = strings.TrimSuffix(path, ext) + "_pretty" + ext
	}

	if err := pkg.SaveAs(ctx, outputPath); err != nil {
		return fmt.Errorf("saving package: %w", err)
	}

	log.Info("wrote deck",
		slog.String("path", outputPath),
		slog.String("field", field),
		slog.Int("changed", changed))
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d notes, wrote %s\n", changed, outputPath)
	return nil
}

// detectPinyinField returns the first field whose value holds numbered pinyin.
func detectPinyinField(pkg *anki.Package) string {
	for i, note := range pkg.Notes {
		if i >= 20 {
			break
		}
		names := pkg.GetFieldNames(note)
		for j, value := range note.Fields {
			if j < len(names) && numberedPattern.MatchString(anki.StripHTML(value)) {
				return names[j]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
