package anki

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/f3rmion/prettypinyin/internal/pinyin"
)

// ErrFieldNotFound is returned when no note type in the deck has the
// requested field.
var ErrFieldNotFound = errors.New("field not found")

var (
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	nbspPattern = regexp.MustCompile(`&nbsp;|\x{00a0}`)
)

// PrettifyHTML converts numbered pinyin in an HTML field value to tone marks.
// Tags are left alone. Inside text, non-breaking spaces become plain spaces
// so that syllables split correctly; text without pinyin is kept as is.
func PrettifyHTML(value string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(value, -1) {
		sb.WriteString(prettifyText(value[last:loc[0]]))
		sb.WriteString(value[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(prettifyText(value[last:]))
	return sb.String()
}

func prettifyText(text string) string {
	spaced := nbspPattern.ReplaceAllString(text, " ")
	pretty := pinyin.Prettify(spaced)
	if pretty == spaced {
		return text
	}
	return pretty
}

// StripHTML removes HTML tags from a field value.
func StripHTML(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// PrettifyField rewrites the named field of every note whose type has it.
// It returns the number of notes that changed.
func (p *Package) PrettifyField(fieldName string) (int, error) {
	found := false
	changed := 0
	now := time.Now().Unix()

	for _, note := range p.Notes {
		model := p.GetModel(note)
		if model == nil {
			continue
		}
		idx := model.FieldIndex(fieldName)
		if idx < 0 {
			continue
		}
		found = true
		if idx >= len(note.Fields) {
			continue
		}

		pretty := PrettifyHTML(note.Fields[idx])
		if pretty == note.Fields[idx] {
			continue
		}

		note.Fields[idx] = pretty
		note.Mod = now
		if idx == model.SortField {
			note.SFLD = StripHTML(pretty)
		}
		note.CSum = checksum(StripHTML(sortValue(note, model)))
		p.dirty[note.ID] = true
		changed++
	}

	if !found {
		return 0, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldName)
	}
	return changed, nil
}

func sortValue(note *Note, model *Model) string {
	if model.SortField >= 0 && model.SortField < len(note.Fields) {
		return note.Fields[model.SortField]
	}
	return note.SFLD
}

// checksum is Anki's note checksum: the first 8 hex digits of the SHA-1 of
// the stripped sort field.
func checksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// SaveAs writes the modified collection and packs it into a new .apkg file.
func (p *Package) SaveAs(ctx context.Context, outputPath string) error {
	if err := p.updateNotes(ctx); err != nil {
		return fmt.Errorf("updating database: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := writeZip(outFile, p.tempDir); err != nil {
		outFile.Close()
		return fmt.Errorf("creating zip: %w", err)
	}
	return outFile.Close()
}

// updateNotes writes changed notes back in a single transaction.
func (p *Package) updateNotes(ctx context.Context) error {
	if len(p.dirty) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE notes SET mod = ?, flds = ?, sfld = ?, csum = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, note := range p.Notes {
		if !p.dirty[note.ID] {
			continue
		}
		flds := strings.Join(note.Fields, fieldSeparator)
		if _, err := stmt.ExecContext(ctx, note.Mod, flds, note.SFLD, note.CSum, note.ID); err != nil {
			return fmt.Errorf("updating note %d: %w", note.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.dirty = make(map[int64]bool)
	return nil
}

// writeZip adds every file below dir to a zip archive written to w.
func writeZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		// SQLite side files are not part of a package.
		if strings.HasSuffix(path, "-journal") || strings.HasSuffix(path, "-wal") || strings.HasSuffix(path, "-shm") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
