package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesKeepsOrder(t *testing.T) {
	lines := make([]string, 500)
	for i := range lines {
		lines[i] = fmt.Sprintf("ma%d", i%6)
	}

	got, err := Lines(context.Background(), lines, pinyin.Prettify, 8)
	require.NoError(t, err)
	require.Len(t, got, len(lines))
	for i, line := range lines {
		assert.Equal(t, pinyin.Prettify(line), got[i], "line %d", i)
	}
}

func TestLinesEmpty(t *testing.T) {
	got, err := Lines(context.Background(), nil, pinyin.Prettify, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLinesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lines(ctx, []string{"ni3", "hao3"}, pinyin.Prettify, 2)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConvert(t *testing.T) {
	in := "ni3 hao3\nzhong1 guo2\n\nnu:3\nhello"
	var out bytes.Buffer

	err := Convert(context.Background(), strings.NewReader(in), &out, pinyin.Prettify, Options{Workers: 3, ChunkSize: 2})
	require.NoError(t, err)
	assert.Equal(t, "nǐ hǎo\nzhōng guó\n\nnǚ\nhello\n", out.String())
}

func TestConvertEmptyInput(t *testing.T) {
	var out bytes.Buffer
	err := Convert(context.Background(), strings.NewReader(""), &out, pinyin.Prettify, Options{})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestConvertWriteError(t *testing.T) {
	err := Convert(context.Background(), strings.NewReader("ni3\n"), failingWriter{}, pinyin.Prettify, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing output")
}
