// Package anki reads Anki .apkg decks and rewrites their pinyin fields.
package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// fieldSeparator joins note fields in the flds column.
const fieldSeparator = "\x1f"

// Package is an opened Anki .apkg file.
type Package struct {
	path    string
	tempDir string
	dbPath  string
	db      *sql.DB
	Models  map[int64]*Model
	Decks   map[int64]*Deck
	Notes   []*Note
	Cards   []*Card

	dirty map[int64]bool
}

// Model is an Anki note type.
type Model struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Fields    []Field `json:"flds"`
	SortField int     `json:"sortf"`
	Type      int     `json:"type"` // 0 = standard, 1 = cloze
}

// Field is one field of a note type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Deck is an Anki deck.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Note is a row of the notes table.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Mod     int64
	Tags    string
	Fields  []string // Split from flds
	SFLD    string   // Sort field
	CSum    int64
}

// Card is a row of the cards table. Only the columns needed to relate cards
// to notes and decks are read.
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
}

// OpenPackage extracts an .apkg file to a temporary directory and loads its
// collection. Close must be called to remove the temporary files.
func OpenPackage(ctx context.Context, path string) (*Package, error) {
	tempDir, err := os.MkdirTemp("", "prettypinyin-anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	pkg := &Package{
		path:    path,
		tempDir: tempDir,
		Models:  make(map[int64]*Model),
		Decks:   make(map[int64]*Deck),
		dirty:   make(map[int64]bool),
	}

	if err := pkg.load(ctx); err != nil {
		pkg.Close()
		return nil, err
	}
	return pkg, nil
}

func (p *Package) load(ctx context.Context) error {
	if err := extractZip(p.path, p.tempDir); err != nil {
		return err
	}

	p.dbPath = filepath.Join(p.tempDir, "collection.anki21")
	if _, err := os.Stat(p.dbPath); os.IsNotExist(err) {
		p.dbPath = filepath.Join(p.tempDir, "collection.anki2")
	}
	if _, err := os.Stat(p.dbPath); err != nil {
		return fmt.Errorf("package has no collection: %w", err)
	}

	db, err := sql.Open("sqlite", p.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	p.db = db

	if err := p.loadCollection(ctx); err != nil {
		return err
	}
	if err := p.loadNotes(ctx); err != nil {
		return err
	}
	return p.loadCards(ctx)
}

// extractZip unpacks archive into dir.
func extractZip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dir, f.Name)
		// Prevent zip slip
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// loadCollection loads models and decks from the col table.
func (p *Package) loadCollection(ctx context.Context) error {
	var models, decks string

	row := p.db.QueryRowContext(ctx, "SELECT models, decks FROM col")
	if err := row.Scan(&models, &decks); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var modelsMap map[string]*Model
	if err := json.Unmarshal([]byte(models), &modelsMap); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, m := range modelsMap {
		if m != nil {
			p.Models[m.ID] = m
		}
	}

	var decksMap map[string]*Deck
	if err := json.Unmarshal([]byte(decks), &decksMap); err != nil {
		return fmt.Errorf("parsing decks: %w", err)
	}
	for _, d := range decksMap {
		if d != nil {
			p.Decks[d.ID] = d
		}
	}

	return nil
}

// loadNotes loads all notes from the database.
func (p *Package) loadNotes(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, guid, mid, mod, tags, flds, sfld, csum
		FROM notes
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			note Note
			flds string
		)
		if err := rows.Scan(&note.ID, &note.GUID, &note.ModelID, &note.Mod,
			&note.Tags, &flds, &note.SFLD, &note.CSum); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}
		note.Fields = strings.Split(flds, fieldSeparator)
		p.Notes = append(p.Notes, &note)
	}

	return rows.Err()
}

// loadCards loads all cards from the database.
func (p *Package) loadCards(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, "SELECT id, nid, did, ord FROM cards ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var card Card
		if err := rows.Scan(&card.ID, &card.NoteID, &card.DeckID, &card.Ord); err != nil {
			return fmt.Errorf("scanning card: %w", err)
		}
		p.Cards = append(p.Cards, &card)
	}

	return rows.Err()
}

// GetModel returns the model for a note.
func (p *Package) GetModel(note *Note) *Model {
	return p.Models[note.ModelID]
}

// FieldIndex returns the position of the named field in the model, matching
// names case-insensitively, or -1.
func (m *Model) FieldIndex(name string) int {
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Ord
		}
	}
	return -1
}

// GetFieldValue returns a field value of a note by field name.
func (p *Package) GetFieldValue(note *Note, fieldName string) string {
	model := p.GetModel(note)
	if model == nil {
		return ""
	}
	if idx := model.FieldIndex(fieldName); idx >= 0 && idx < len(note.Fields) {
		return note.Fields[idx]
	}
	return ""
}

// GetFieldNames returns all field names for a note's model.
func (p *Package) GetFieldNames(note *Note) []string {
	model := p.GetModel(note)
	if model == nil {
		return nil
	}

	names := make([]string, len(model.Fields))
	for i, field := range model.Fields {
		names[i] = field.Name
	}
	return names
}

// Close removes the extracted files.
func (p *Package) Close() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
		p.db = nil
	}
	if p.tempDir != "" {
		if rmErr := os.RemoveAll(p.tempDir); rmErr != nil && err == nil {
			err = rmErr
		}
		p.tempDir = ""
	}
	return err
}

// Summary returns a summary of the package contents.
func (p *Package) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Anki Package: %s\n", p.path)
	fmt.Fprintf(&sb, "  Decks: %d\n", len(p.Decks))
	for _, deck := range p.Decks {
		fmt.Fprintf(&sb, "    - %s\n", deck.Name)
	}
	fmt.Fprintf(&sb, "  Models (Note Types): %d\n", len(p.Models))
	for _, model := range p.Models {
		fmt.Fprintf(&sb, "    - %s (%d fields)\n", model.Name, len(model.Fields))
	}
	fmt.Fprintf(&sb, "  Notes: %d\n", len(p.Notes))
	fmt.Fprintf(&sb, "  Cards: %d\n", len(p.Cards))

	return sb.String()
}
