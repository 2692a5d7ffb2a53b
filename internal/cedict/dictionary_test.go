package cedict

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# CC-CEDICT
# Community maintained free Chinese-English dictionary.
中國 中国 [Zhong1 guo2] /China/
你好 你好 [ni3 hao3] /hello/hi/
女 女 [nu:3] /female/woman/daughter/
冰淇淋 冰淇淋 [bing1 qi2 lin2] /ice cream/
冰激凌 冰激凌 [bing1 ji1 ling2] /ice cream/see also 冰淇淋[bing1 qi2 lin2]/
個 个 [ge4] /individual/CL:個|个[ge4]/
not an entry
`

func TestParseLine(t *testing.T) {
	entry, err := ParseLine("傳統 传统 [chuan2 tong3] /tradition/traditional/")
	require.NoError(t, err)
	assert.Equal(t, "傳統", entry.Traditional)
	assert.Equal(t, "传统", entry.Simplified)
	assert.Equal(t, "chuan2 tong3", entry.Pinyin)
	assert.Equal(t, []string{"tradition", "traditional"}, entry.Definitions)
	assert.Equal(t, "chuán tǒng", entry.PrettyPinyin())
}

func TestParseLineMalformed(t *testing.T) {
	lines := []string{
		"",
		"# comment",
		"中國",
		"中國 中国",
		"中國 中国 Zhong1 guo2 /China/",
		"中國 中国 [Zhong1 guo2 /China/",
		"中國 中国 [Zhong1 guo2]",
		"中國 中国 [Zhong1 guo2] China",
	}
	for _, line := range lines {
		_, err := ParseLine(line)
		assert.True(t, errors.Is(err, ErrMalformed), "ParseLine(%q) = %v", line, err)
	}
}

func TestPrettyDefinitions(t *testing.T) {
	entry, err := ParseLine("冰激凌 冰激凌 [bing1 ji1 ling2] /ice cream/see also 冰淇淋[bing1 qi2 lin2]/")
	require.NoError(t, err)
	assert.Equal(t, []string{"ice cream", "see also 冰淇淋[bīng qí lín]"}, entry.PrettyDefinitions())
}

func TestFormat(t *testing.T) {
	entry, err := ParseLine("個 个 [ge4] /individual/CL:個|个[ge4]/")
	require.NoError(t, err)
	assert.Equal(t, "個 个 [ge4] /individual/CL:個|个[ge4]/", entry.Format(false))
	assert.Equal(t, "個 个 [gè] /individual/CL:個|个[gè]/", entry.Format(true))
}

func TestDictionaryLoad(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.Load(strings.NewReader(sample)))

	assert.Equal(t, 6, d.Size())
	assert.Equal(t, 1, d.Malformed())

	entries := d.Lookup("中国")
	require.Len(t, entries, 1)
	assert.Equal(t, "Zhōng guó", entries[0].PrettyPinyin())
	assert.Equal(t, entries, d.Lookup("中國"))

	entries = d.Lookup("女")
	require.Len(t, entries, 1)
	assert.Equal(t, "nǚ", entries[0].PrettyPinyin())

	assert.Len(t, d.Lookup("个"), 1)
	assert.Nil(t, d.Lookup("猫"))
}

func TestDictionaryLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cedict_ts.u8")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	d := NewDictionary()
	require.NoError(t, d.LoadFromFile(path))
	assert.Equal(t, 6, d.Size())

	err := NewDictionary().LoadFromFile(filepath.Join(t.TempDir(), "missing.u8"))
	assert.Error(t, err)
}

func TestRewrite(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Rewrite(context.Background(), strings.NewReader(sample), &out, 4, nil))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "# CC-CEDICT", lines[0])
	assert.Equal(t, "中國 中国 [Zhōng guó] /China/", lines[2])
	assert.Equal(t, "你好 你好 [nǐ hǎo] /hello/hi/", lines[3])
	assert.Equal(t, "女 女 [nǚ] /female/woman/daughter/", lines[4])
	assert.Equal(t, "冰激凌 冰激凌 [bīng jī líng] /ice cream/see also 冰淇淋[bīng qí lín]/", lines[6])
	assert.Equal(t, "not an entry", lines[8])
}

func TestRewriteLineKeepsLayout(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"中國  中国 [Zhong1 guo2] /China//PRC/", "中國  中国 [Zhōng guó] /China//PRC/"},
		{"冰 冰 [bing1] /ice/see 冰淇淋[bing1 qi2 lin2]/ ", "冰 冰 [bīng] /ice/see 冰淇淋[bīng qí lín]/ "},
		{"# [ni3]", "# [ni3]"},
		{"not an entry [ni3]", "not an entry [ni3]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RewriteLine(tt.input), "RewriteLine(%q)", tt.input)
	}
}
