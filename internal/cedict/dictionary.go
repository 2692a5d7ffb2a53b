// Package cedict reads CC-CEDICT dictionary files and renders their pinyin
// with tone marks.
package cedict

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/f3rmion/prettypinyin/internal/batch"
	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/samber/lo"
)

// ErrMalformed is returned for lines that are not valid CC-CEDICT entries.
var ErrMalformed = errors.New("malformed cedict line")

// Entry is a single CC-CEDICT entry:
//
//	傳統 传统 [chuan2 tong3] /tradition/traditional/
type Entry struct {
	Traditional string
	Simplified  string
	Pinyin      string   // Numbered pinyin as written in the file
	Definitions []string // Definitions in file order
}

// referencePattern matches pinyin embedded in definitions, as in
// "see 冰淇淋[bing1 qi2 lin2]".
var referencePattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ParseLine parses one entry line. Comment lines and blank lines are
// reported as ErrMalformed as well; use IsComment to tell them apart.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" || IsComment(line) {
		return Entry{}, fmt.Errorf("%w: not an entry", ErrMalformed)
	}

	trad, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing simplified headword", ErrMalformed)
	}
	simp, rest, ok := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing pinyin", ErrMalformed)
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "[") {
		return Entry{}, fmt.Errorf("%w: missing pinyin", ErrMalformed)
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return Entry{}, fmt.Errorf("%w: unterminated pinyin", ErrMalformed)
	}
	py := rest[1:end]

	defs := strings.TrimSpace(rest[end+1:])
	if len(defs) < 2 || !strings.HasPrefix(defs, "/") || !strings.HasSuffix(defs, "/") {
		return Entry{}, fmt.Errorf("%w: missing definitions", ErrMalformed)
	}

	definitions := lo.Filter(strings.Split(defs[1:len(defs)-1], "/"), func(d string, _ int) bool {
		return d != ""
	})

	return Entry{
		Traditional: trad,
		Simplified:  simp,
		Pinyin:      py,
		Definitions: definitions,
	}, nil
}

// IsComment reports whether line is a CC-CEDICT comment.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// PrettyPinyin returns the entry's pinyin with tone marks.
func (e Entry) PrettyPinyin() string {
	return pinyin.Prettify(e.Pinyin)
}

// PrettyDefinitions returns the definitions with bracketed pinyin references
// converted to tone marks.
func (e Entry) PrettyDefinitions() []string {
	return lo.Map(e.Definitions, func(d string, _ int) string {
		return prettifyReferences(d)
	})
}

func prettifyReferences(s string) string {
	return referencePattern.ReplaceAllStringFunc(s, func(m string) string {
		return "[" + pinyin.Prettify(m[1:len(m)-1]) + "]"
	})
}

// Format renders the entry as a CC-CEDICT line. With pretty set, the pinyin
// and definition references carry tone marks.
func (e Entry) Format(pretty bool) string {
	py, defs := e.Pinyin, e.Definitions
	if pretty {
		py, defs = e.PrettyPinyin(), e.PrettyDefinitions()
	}
	return fmt.Sprintf("%s %s [%s] /%s/", e.Traditional, e.Simplified, py, strings.Join(defs, "/"))
}

// Dictionary holds parsed entries indexed by both headwords.
type Dictionary struct {
	entries   map[string][]*Entry
	size      int
	malformed int
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		entries: make(map[string][]*Entry),
	}
}

// LoadFromFile loads entries from a CC-CEDICT file.
func (d *Dictionary) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dictionary file: %w", err)
	}
	defer file.Close()

	return d.Load(file)
}

// Load reads entries from r. Comments are ignored and malformed lines are
// skipped and counted.
func (d *Dictionary) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || IsComment(line) {
			continue
		}

		entry, err := ParseLine(line)
		if err != nil {
			d.malformed++
			continue
		}
		d.Add(entry)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading dictionary file: %w", err)
	}
	return nil
}

// Add inserts an entry.
func (d *Dictionary) Add(entry Entry) {
	e := &entry
	d.entries[e.Traditional] = append(d.entries[e.Traditional], e)
	if e.Simplified != e.Traditional {
		d.entries[e.Simplified] = append(d.entries[e.Simplified], e)
	}
	d.size++
}

// Lookup returns every entry whose traditional or simplified headword is word.
func (d *Dictionary) Lookup(word string) []*Entry {
	return d.entries[word]
}

// Size returns the number of entries in the dictionary.
func (d *Dictionary) Size() int {
	return d.size
}

// Malformed returns the number of lines skipped while loading.
func (d *Dictionary) Malformed() int {
	return d.malformed
}

// RewriteLine returns line with the bracketed pinyin of an entry, including
// references inside its definitions, converted to tone marks. Everything
// outside the brackets is kept byte for byte. Comments and lines that do not
// parse are returned unchanged.
func RewriteLine(line string) string {
	if _, err := ParseLine(line); err != nil {
		return line
	}
	return prettifyReferences(line)
}

// Rewrite copies a CC-CEDICT file from r to w with every entry's pinyin
// converted to tone marks. Only the bracketed spans of entry lines change.
func Rewrite(ctx context.Context, r io.Reader, w io.Writer, workers int, log *slog.Logger) error {
	return batch.Convert(ctx, r, w, RewriteLine, batch.Options{
		Workers: workers,
		Log:     log,
	})
}
