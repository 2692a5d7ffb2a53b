package pinyin

import "strings"

// umlauts rewrites the informal ü spellings used by CC-CEDICT and IMEs.
var umlauts = strings.NewReplacer(
	"v", "ü",
	"V", "Ü",
	"u:", "ü",
	"U:", "Ü",
)

// Prettify turns pinyin written with tone numbers into pinyin with tone
// marks. Syllables are separated by single spaces and carry their tone as a
// trailing digit 1-5:
//
//	Prettify("ma1 ma2 ma3 ma4 ma") // mā má mǎ mà ma
//
// Syllables without a trailing tone digit, or with 0 or 6-9, are returned
// as they are. A digit overrides any mark already present, and 5 removes it.
func Prettify(text string) string {
	text = NormalizeUmlaut(text)

	syllables := strings.Split(text, " ")
	for i, s := range syllables {
		syllables[i] = prettifySyllable(s)
	}
	return strings.Join(syllables, " ")
}

// NormalizeUmlaut replaces v, V, u: and U: with ü and Ü.
func NormalizeUmlaut(text string) string {
	return umlauts.Replace(text)
}

// prettifySyllable converts one numbered syllable. The input must already be
// umlaut-normalized.
func prettifySyllable(syllable string) string {
	skeleton := []rune(syllable)
	if len(skeleton) == 0 {
		return syllable
	}
	for i, r := range skeleton {
		skeleton[i] = clearMark(r)
	}

	tone, ok := toneDigit(skeleton[len(skeleton)-1])
	if !ok {
		return syllable
	}

	letters := skeleton[:len(skeleton)-1]
	if pos := tonePosition(letters); pos >= 0 {
		letters[pos], _ = markVowel(letters[pos], tone)
	}
	return string(letters)
}

// toneDigit parses a trailing tone number. Digits outside 1-5 and
// non-digits are rejected.
func toneDigit(r rune) (Tone, bool) {
	if r < '0' || r > '9' {
		return ToneUnknown, false
	}
	t := Tone(r - '0')
	return t, t.Valid()
}

// tonePosition returns the index of the vowel that takes the tone mark, or
// -1 when the syllable has no toneable letter. The first toneable letter
// wins unless it is a medial directly followed by another toneable letter,
// in which case the mark moves to that letter.
func tonePosition(letters []rune) int {
	for i, r := range letters {
		if !isToneable(r) {
			continue
		}
		if isMedial(r) && i+1 < len(letters) && isToneable(letters[i+1]) {
			return i + 1
		}
		return i
	}
	return -1
}
