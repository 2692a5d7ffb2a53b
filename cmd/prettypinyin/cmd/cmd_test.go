package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with a fresh config path and returns stdout.
func execute(t *testing.T, configFile, stdin string, args ...string) (string, error) {
	t.Helper()

	if configFile == "" {
		configFile = filepath.Join(t.TempDir(), "config.yaml")
	}
	t.Cleanup(func() {
		cfgFile = ""
		hanziAll, hanziLine = false, false
		cedictOutput = ""
		initForce = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", configFile))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPrettifyArgs(t *testing.T) {
	out, err := execute(t, "", "", "ni3", "hao3")
	require.NoError(t, err)
	assert.Equal(t, "nǐ hǎo\n", out)
}

func TestPrettifyStdin(t *testing.T) {
	out, err := execute(t, "", "zhong1 guo2\nnu:3\nni7\n")
	require.NoError(t, err)
	assert.Equal(t, "zhōng guó\nnǚ\nni7\n", out)
}

func TestNumberize(t *testing.T) {
	out, err := execute(t, "", "", "numberize", "nǐ hǎo")
	require.NoError(t, err)
	assert.Equal(t, "ni3 hao3\n", out)
}

func TestNumberizeNeutralFiveFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neutral_five: true\n"), 0644))

	out, err := execute(t, path, "", "numberize", "mā ma")
	require.NoError(t, err)
	assert.Equal(t, "ma1 ma5\n", out)
}

func TestEnvOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neutral_five: false\n"), 0644))
	t.Setenv("PRETTYPINYIN_NEUTRAL_FIVE", "true")

	out, err := execute(t, path, "", "numberize", "mā ma")
	require.NoError(t, err)
	assert.Equal(t, "ma1 ma5\n", out)
	assert.True(t, settings.NeutralFive)
}

func TestSettingsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "workers: 3\nanki_field: Reading\nlog:\n  level: warn\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))

	_, err := execute(t, path, "", "ni3")
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Workers)
	assert.Equal(t, "Reading", settings.AnkiField)
	assert.Equal(t, "warn", settings.Log.Level)
	assert.Equal(t, "json", settings.Log.Format)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -3\n"), 0644))

	_, err := execute(t, path, "", "ni3")
	assert.ErrorContains(t, err, "loading config")
}

func TestHanziLine(t *testing.T) {
	out, err := execute(t, "", "", "hanzi", "--line", "中国")
	require.NoError(t, err)
	assert.Equal(t, "zhōng guó\n", out)
}

func TestHanziTable(t *testing.T) {
	out, err := execute(t, "", "", "hanzi", "你好")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "你  nǐ"))
	assert.True(t, strings.HasSuffix(lines[1], "hao3"))
}

func TestHanziWithoutChinese(t *testing.T) {
	_, err := execute(t, "", "", "hanzi", "hello")
	assert.Error(t, err)
}

const cedictSample = `# test
中國 中国 [Zhong1 guo2] /China/
你好 你好 [ni3 hao3] /hello/hi/
`

func TestCedictRewriteStdin(t *testing.T) {
	out, err := execute(t, "", cedictSample, "cedict", "rewrite", "-")
	require.NoError(t, err)
	assert.Equal(t, "# test\n中國 中国 [Zhōng guó] /China/\n你好 你好 [nǐ hǎo] /hello/hi/\n", out)
}

func TestCedictRewriteToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cedict_ts.u8")
	outPath := filepath.Join(dir, "pretty.u8")
	require.NoError(t, os.WriteFile(in, []byte(cedictSample), 0644))

	_, err := execute(t, "", "", "cedict", "rewrite", in, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "# test\n中國 中国 [Zhōng guó] /China/\n你好 你好 [nǐ hǎo] /hello/hi/\n", string(data))
}

func TestCedictRewriteBadOutput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "cedict_ts.u8")
	require.NoError(t, os.WriteFile(in, []byte(cedictSample), 0644))

	_, err := execute(t, "", "", "cedict", "rewrite", in, "-o", filepath.Join(t.TempDir(), "missing", "out.u8"))
	assert.ErrorContains(t, err, "creating output file")
}

func TestCedictLookup(t *testing.T) {
	in := filepath.Join(t.TempDir(), "cedict_ts.u8")
	require.NoError(t, os.WriteFile(in, []byte(cedictSample), 0644))

	out, err := execute(t, "", "", "cedict", "lookup", in, "中国", "猫")
	require.NoError(t, err)
	assert.Equal(t, "中國 中国 [Zhōng guó] /China/\n猫: (not found)\n", out)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, path, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "anki_field: Pinyin")

	_, err = execute(t, path, "", "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestDetectPinyinPattern(t *testing.T) {
	assert.True(t, numberedPattern.MatchString("ni3 hao3"))
	assert.True(t, numberedPattern.MatchString("nu:3"))
	assert.False(t, numberedPattern.MatchString("nǐ hǎo"))
	assert.False(t, numberedPattern.MatchString("你好"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "你好...", truncate("你好世界", 2))
}
