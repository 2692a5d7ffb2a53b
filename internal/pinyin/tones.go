package pinyin

// Tone represents the four tones of Mandarin plus neutral tone.
type Tone int

const (
	ToneUnknown Tone = 0
	Tone1       Tone = 1 // First tone (high level) - ˉ
	Tone2       Tone = 2 // Second tone (rising) - ˊ
	Tone3       Tone = 3 // Third tone (dipping) - ˇ
	Tone4       Tone = 4 // Fourth tone (falling) - ˋ
	Tone5       Tone = 5 // Fifth tone (neutral)
)

// Valid reports whether t is one of the five tones.
func (t Tone) Valid() bool {
	return t >= Tone1 && t <= Tone5
}

// Digit returns the tone number as written after a syllable.
func (t Tone) Digit() rune {
	return '0' + rune(t)
}

// Name returns a short human-readable description of the tone.
func (t Tone) Name() string {
	switch t {
	case Tone1:
		return "first (level)"
	case Tone2:
		return "second (rising)"
	case Tone3:
		return "third (dipping)"
	case Tone4:
		return "fourth (falling)"
	case Tone5:
		return "neutral"
	default:
		return "unknown"
	}
}

// toneRow holds the five variants of one toneable letter: tones 1-4 and
// the bare letter used for the neutral tone.
type toneRow struct {
	base     rune
	variants [5]rune
}

// The uppercase Ü row keeps U as its neutral variant, so a neutral-tone
// Ü comes out as U.
var toneTable = [12]toneRow{
	{'a', [5]rune{'ā', 'á', 'ǎ', 'à', 'a'}},
	{'e', [5]rune{'ē', 'é', 'ě', 'è', 'e'}},
	{'u', [5]rune{'ū', 'ú', 'ǔ', 'ù', 'u'}},
	{'i', [5]rune{'ī', 'í', 'ǐ', 'ì', 'i'}},
	{'o', [5]rune{'ō', 'ó', 'ǒ', 'ò', 'o'}},
	{'ü', [5]rune{'ǖ', 'ǘ', 'ǚ', 'ǜ', 'ü'}},
	{'A', [5]rune{'Ā', 'Á', 'Ǎ', 'À', 'A'}},
	{'E', [5]rune{'Ē', 'É', 'Ě', 'È', 'E'}},
	{'U', [5]rune{'Ū', 'Ú', 'Ǔ', 'Ù', 'U'}},
	{'I', [5]rune{'Ī', 'Í', 'Ǐ', 'Ì', 'I'}},
	{'O', [5]rune{'Ō', 'Ó', 'Ǒ', 'Ò', 'O'}},
	{'Ü', [5]rune{'Ǖ', 'Ǘ', 'Ǚ', 'Ǜ', 'U'}},
}

// toneMark is the reverse entry for a character found in the table.
type toneMark struct {
	base rune
	tone Tone
}

var (
	rows  map[rune]*toneRow
	marks map[rune]toneMark
)

func init() {
	rows = make(map[rune]*toneRow, len(toneTable))
	marks = make(map[rune]toneMark, len(toneTable)*5)
	for i := range toneTable {
		row := &toneTable[i]
		rows[row.base] = row
		for col, r := range row.variants {
			// First row wins, so U in the Ü row still clears to U.
			if _, ok := marks[r]; ok {
				continue
			}
			marks[r] = toneMark{base: row.base, tone: Tone(col + 1)}
		}
	}
}

// isToneable reports whether r is a key of the tone table.
func isToneable(r rune) bool {
	_, ok := rows[r]
	return ok
}

// isMedial reports whether r is a glide vowel that passes the tone mark
// to a following vowel.
func isMedial(r rune) bool {
	switch r {
	case 'i', 'u', 'ü', 'I', 'U', 'Ü':
		return true
	}
	return false
}

// markVowel returns the variant of base for tone t. ok is false when base
// is not toneable or t is out of range.
func markVowel(base rune, t Tone) (rune, bool) {
	row, found := rows[base]
	if !found || !t.Valid() {
		return base, false
	}
	return row.variants[t-1], true
}

// clearMark maps a tone-marked vowel back to its base letter. Any other
// rune is returned unchanged.
func clearMark(r rune) rune {
	if m, ok := marks[r]; ok {
		return m.base
	}
	return r
}

// markTone returns the tone carried by a marked vowel. Bare letters report
// ToneUnknown.
func markTone(r rune) Tone {
	m, ok := marks[r]
	if !ok || m.tone == Tone5 {
		return ToneUnknown
	}
	return m.tone
}
