// Package pinyin converts between numbered pinyin (ni3 hao3) and pinyin with
// tone marks (nǐ hǎo), and looks up readings for Chinese characters.
package pinyin

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Parser looks up pinyin readings for Chinese characters.
type Parser struct {
	args gopinyin.Args
}

// NewParser creates a new pinyin parser.
func NewParser() *Parser {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone3 // Returns tone numbers: zhong1
	args.Heteronym = true       // Return all possible readings
	return &Parser{args: args}
}

// Reading is the pronunciation of one Chinese character.
type Reading struct {
	Hanzi    string   // The character itself
	Numbered string   // First reading with tone number (e.g., "hao3")
	Pretty   string   // First reading with tone mark (e.g., "hǎo")
	All      []string // Every known reading, numbered
}

// Syllable is a single pinyin syllable split into its parts.
type Syllable struct {
	Full    string // Syllable as given (e.g., "hǎo" or "hao3")
	Base    string // Toneless letters (e.g., "hao")
	Initial string // Leading consonant(s) (e.g., "h")
	Final   string // Rest of the syllable (e.g., "ao")
	Tone    Tone   // Tone number (1-5)
}

// Readings returns all numbered readings for a character.
func (p *Parser) Readings(char string) []string {
	result := gopinyin.Pinyin(char, p.args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}

// Annotate returns the reading of every Chinese character in text, in order.
// Other characters are skipped.
func (p *Parser) Annotate(text string) []Reading {
	var readings []Reading
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		char := string(r)
		all := p.Readings(char)
		if len(all) == 0 {
			continue
		}
		readings = append(readings, Reading{
			Hanzi:    char,
			Numbered: all[0],
			Pretty:   Prettify(all[0]),
			All:      all,
		})
	}
	return readings
}

// Pinyin returns the marked first reading of every Chinese character in text,
// separated by spaces.
func (p *Parser) Pinyin(text string) string {
	readings := p.Annotate(text)
	out := make([]string, len(readings))
	for i, r := range readings {
		out[i] = r.Pretty
	}
	return strings.Join(out, " ")
}

// ParseSyllable splits a marked or numbered syllable into its base letters,
// initial, final and tone. A trailing tone digit takes precedence over marks;
// a syllable with neither is neutral.
func ParseSyllable(syllable string) Syllable {
	result := Syllable{Full: syllable}

	runes := []rune(NormalizeUmlaut(syllable))
	if n := len(runes); n > 0 {
		if t, ok := toneDigit(runes[n-1]); ok {
			result.Tone = t
			runes = runes[:n-1]
		}
	}

	var base strings.Builder
	for _, r := range runes {
		if t := markTone(r); t != ToneUnknown && result.Tone == ToneUnknown {
			result.Tone = t
		}
		base.WriteRune(clearMark(r))
	}
	if result.Tone == ToneUnknown {
		result.Tone = Tone5
	}

	result.Base = base.String()
	result.Initial, result.Final = SplitInitialFinal(result.Base)
	return result
}

// initials ordered so that two-letter initials match before their prefixes.
var initials = []string{
	"zh", "ch", "sh",
	"b", "p", "m", "f", "d", "t", "n", "l", "g", "k", "h",
	"j", "q", "x", "r", "z", "c", "s", "y", "w",
}

// SplitInitialFinal splits toneless pinyin into its initial consonant and
// final. Syllables with a null initial return an empty initial.
func SplitInitialFinal(base string) (initial, final string) {
	for _, in := range initials {
		if len(base) > len(in) && strings.EqualFold(base[:len(in)], in) {
			return base[:len(in)], base[len(in):]
		}
	}
	return "", base
}

// Options controls Numberize.
type Options struct {
	// NeutralFive appends 5 to unmarked syllables, as CC-CEDICT does.
	NeutralFive bool
}

// Numberize turns pinyin with tone marks back into numbered pinyin:
//
//	Numberize("nǐ hǎo") // ni3 hao3
func Numberize(text string) string {
	return NumberizeWith(text, Options{})
}

// NumberizeWith is Numberize with options.
func NumberizeWith(text string, opts Options) string {
	syllables := strings.Split(text, " ")
	for i, s := range syllables {
		syllables[i] = numberizeSyllable(s, opts)
	}
	return strings.Join(syllables, " ")
}

func numberizeSyllable(syllable string, opts Options) string {
	runes := []rune(syllable)
	if len(runes) == 0 {
		return syllable
	}
	if last := runes[len(runes)-1]; last >= '0' && last <= '9' {
		return syllable
	}

	tone := ToneUnknown
	hasVowel := false
	for i, r := range runes {
		if t := markTone(r); t != ToneUnknown && tone == ToneUnknown {
			tone = t
		}
		runes[i] = clearMark(r)
		if isToneable(runes[i]) {
			hasVowel = true
		}
	}

	switch {
	case tone != ToneUnknown:
		return string(runes) + string(tone.Digit())
	case opts.NeutralFive && hasVowel:
		return string(runes) + string(Tone5.Digit())
	default:
		return syllable
	}
}
