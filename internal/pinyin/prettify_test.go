package pinyin

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPrettifyBasic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ni3 hao3", "nǐ hǎo"},
		{"zhong1 guo2", "zhōng guó"},
		{"ma1 ma2 ma3 ma4", "mā má mǎ mà"},
		{"ma1 ma2 ma3 ma4 ma", "mā má mǎ mà ma"},
		{"ma", "ma"},
		{"An1 hui1", "Ān huī"},
		{"NI3 HAO3 ZHONG1 GUO2", "NǏ HǍO ZHŌNG GUÓ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Prettify(tt.input), "Prettify(%q)", tt.input)
	}
}

func TestPrettifyUmlaut(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nu:3 nu:3", "nǚ nǚ"},
		{"NU:3", "NǙ"},
		{"nu:3 NU:3", "nǚ NǙ"},
		{"nv3", "nǚ"},
		{"NV3", "NǙ"},
		{"lv4 lu:4", "lǜ lǜ"},
		{"lu:e4", "lüè"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Prettify(tt.input), "Prettify(%q)", tt.input)
	}
}

func TestPrettifyInvalidTone(t *testing.T) {
	for _, in := range []string{"ni7", "ni0", "ni6", "ni9", "hao8 ni0"} {
		assert.Equal(t, in, Prettify(in))
	}
}

func TestPrettifyClearTones(t *testing.T) {
	assert.Equal(t, "ni", Prettify("nǐ5"))
	assert.Equal(t, "nǚ nü", Prettify("nǚ nǚ5"))
	assert.Equal(t, "ma", Prettify("mà5"))
}

func TestPrettifyReassignTones(t *testing.T) {
	assert.Equal(t, "nī", Prettify("nǐ1"))
	assert.Equal(t, "nǘ nǜ", Prettify("nǚ2 nǚ4"))
	assert.Equal(t, "hǎo", Prettify("hào3"))
}

func TestPrettifyMedial(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hui1", "huī"},
		{"gui4", "guì"},
		{"liu2", "liú"},
		{"guo2", "guó"},
		{"xue2", "xué"},
		{"jia1", "jiā"},
		{"lüe4", "lüè"},
		{"shuang1", "shuāng"},
		{"xiong2", "xióng"},
		{"GUO2", "GUÓ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Prettify(tt.input), "Prettify(%q)", tt.input)
	}
}

func TestPrettifyNonMedialFirstVowel(t *testing.T) {
	// a, e and o keep the mark even when another vowel follows.
	assert.Equal(t, "hǎo", Prettify("hao3"))
	assert.Equal(t, "lèi", Prettify("lei4"))
	assert.Equal(t, "gǒu", Prettify("gou3"))
	assert.Equal(t, "ài", Prettify("ai4"))
}

func TestPrettifyNoVowel(t *testing.T) {
	assert.Equal(t, "m", Prettify("m2"))
	assert.Equal(t, "hm", Prettify("hm5"))
	assert.Equal(t, "", Prettify("3"))
}

func TestPrettifyUppercaseNeutralUmlaut(t *testing.T) {
	// The uppercase Ü row carries U as its neutral variant.
	assert.Equal(t, "NU", Prettify("NÜ5"))
	assert.Equal(t, "NU", Prettify("NV5"))
	assert.Equal(t, "nü", Prettify("nv5"))
}

func TestPrettifyPassThrough(t *testing.T) {
	tests := []string{
		"",
		"hello",
		"nǐ",
		"ni3,",
		"(ma)",
		"中国",
		"hao3!",
	}
	for _, in := range tests {
		assert.Equal(t, in, Prettify(in), "Prettify(%q)", in)
	}
}

func TestPrettifyKeepsSpacing(t *testing.T) {
	assert.Equal(t, "nǐ  hǎo", Prettify("ni3  hao3"))
	assert.Equal(t, " nǐ ", Prettify(" ni3 "))
}

func TestPrettifyTokenCount(t *testing.T) {
	inputs := []string{
		"ni3 hao3",
		"  a1  b2 c",
		"nu:3 U:4 V5 x",
		"",
		"ni7 ni0 ma5 ma",
	}
	for _, in := range inputs {
		got := Prettify(in)
		assert.Equal(t, strings.Count(in, " "), strings.Count(got, " "), "token count for %q", in)
	}
}

func TestPrettifyLengthInvariant(t *testing.T) {
	for _, in := range []string{"ni3", "zhuang4", "lüe4", "m2", "nǐ5", "A1", "er2"} {
		got := Prettify(in)
		assert.Equal(t, utf8.RuneCountInString(in)-1, utf8.RuneCountInString(got), "Prettify(%q) = %q", in, got)
	}
}

func TestPrettifyCasePreserved(t *testing.T) {
	upper := Prettify("ZHUANG4 LÜE4 XIONG2 ER2")
	for _, r := range upper {
		assert.False(t, unicode.IsLower(r), "unexpected lowercase %q in %q", r, upper)
	}

	lower := Prettify("zhuang4 lüe4 xiong2 er2")
	for _, r := range lower {
		assert.False(t, unicode.IsUpper(r), "unexpected uppercase %q in %q", r, lower)
	}
}

func TestPrettifyIdempotentRemark(t *testing.T) {
	for _, in := range []string{"ni3", "guo2", "lüe4", "zhong1", "Ai4"} {
		once := Prettify(in)
		digit := in[len(in)-1:]
		assert.Equal(t, once, Prettify(once+digit), "re-marking %q", once)
	}
}

func TestToneDigit(t *testing.T) {
	for r := '1'; r <= '5'; r++ {
		tone, ok := toneDigit(r)
		assert.True(t, ok)
		assert.Equal(t, Tone(r-'0'), tone)
	}
	for _, r := range []rune{'0', '6', '9', 'a', '٣'} {
		_, ok := toneDigit(r)
		assert.False(t, ok, "toneDigit(%q)", r)
	}
}

func TestTonePosition(t *testing.T) {
	assert.Equal(t, 1, tonePosition([]rune("hao")))
	assert.Equal(t, 2, tonePosition([]rune("hui")))
	assert.Equal(t, 0, tonePosition([]rune("i")))
	assert.Equal(t, -1, tonePosition([]rune("hm")))
	assert.Equal(t, -1, tonePosition(nil))
}

func TestClearMarkRoundTrip(t *testing.T) {
	for _, row := range toneTable {
		for col, r := range row.variants {
			if col == 4 && row.base == 'Ü' {
				assert.Equal(t, 'U', clearMark(r))
				continue
			}
			assert.Equal(t, row.base, clearMark(r), "clearMark(%q)", r)
		}
	}
	assert.Equal(t, 'x', clearMark('x'))
}
