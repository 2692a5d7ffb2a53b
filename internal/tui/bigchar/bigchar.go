// Package bigchar renders text as large block art using half-block characters.
package bigchar

import (
	"container/list"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontPaths lists system fonts that cover both Latin tone marks and CJK.
var fontPaths = []string{
	// macOS
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	// Windows
	"C:\\Windows\\Fonts\\msyh.ttc",
	"C:\\Windows\\Fonts\\arial.ttf",
}

const (
	maxCached = 64
	faceSize  = 64
	threshold = 40
	padding   = 4
)

var (
	loadOnce   sync.Once
	loadedFace font.Face

	cacheMu    sync.Mutex
	cache      = make(map[string]*list.Element)
	cacheOrder = list.New() // most recently used first
)

type cacheEntry struct {
	key      string
	rendered string
}

func face() font.Face {
	loadOnce.Do(func() {
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if f, err := parseFace(data); err == nil {
				loadedFace = f
				return
			}
		}
	})
	return loadedFace
}

// parseFace accepts either a font collection or a single font.
func parseFace(data []byte) (font.Face, error) {
	opts := &opentype.FaceOptions{Size: faceSize, DPI: 72}

	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
		if fnt, err := coll.Font(0); err == nil {
			return opentype.NewFace(fnt, opts)
		}
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, opts)
}

// IsAvailable returns true if a usable font was found.
func IsAvailable() bool {
	return face() != nil
}

// Render draws text with the loaded font and returns it as rows lines of
// cols half-block cells. It returns "" when no font is available.
func Render(text string, cols, rows int) string {
	f := face()
	if text == "" || f == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	return renderWith(f, text, cols, rows)
}

func renderWith(f font.Face, text string, cols, rows int) string {
	metrics := f.Metrics()
	width := font.MeasureString(f, text).Ceil() + padding*2
	height := (metrics.Ascent + metrics.Descent).Ceil() + padding*2

	src := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P(padding, padding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)

	return ToHalfBlocks(scaleDown(src, cols, rows*2), cols, rows)
}

// Cached returns a cached rendering of text or renders and stores it. Only
// the most recently used renderings are kept.
func Cached(text string, cols, rows int) string {
	if !IsAvailable() {
		return ""
	}

	key := fmt.Sprintf("%s\x00%d\x00%d", text, cols, rows)
	if rendered, ok := lookup(key); ok {
		return rendered
	}

	rendered := Render(text, cols, rows)
	store(key, rendered)
	return rendered
}

func lookup(key string) (string, bool) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	el, ok := cache[key]
	if !ok {
		return "", false
	}
	cacheOrder.MoveToFront(el)
	return el.Value.(*cacheEntry).rendered, true
}

func store(key, rendered string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if el, ok := cache[key]; ok {
		el.Value.(*cacheEntry).rendered = rendered
		cacheOrder.MoveToFront(el)
		return
	}
	cache[key] = cacheOrder.PushFront(&cacheEntry{key: key, rendered: rendered})

	for cacheOrder.Len() > maxCached {
		oldest := cacheOrder.Back()
		cacheOrder.Remove(oldest)
		delete(cache, oldest.Value.(*cacheEntry).key)
	}
}

// scaleDown scales a grayscale image using area averaging.
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Max.X
	srcHeight := src.Bounds().Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1, sy1 := int(float64(dx)*xRatio), int(float64(dy)*yRatio)
			sx2, sy2 := min(int(float64(dx+1)*xRatio), srcWidth), min(int(float64(dy+1)*yRatio), srcHeight)
			// Upscaling maps several cells onto one source pixel.
			sx2, sy2 = max(sx2, sx1+1), max(sy2, sy1+1)

			var sum, count int
			for sy := sy1; sy < sy2 && sy < srcHeight; sy++ {
				for sx := sx1; sx < sx2 && sx < srcWidth; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}

	return dst
}

// ToHalfBlocks converts a grayscale image to half-block art. Each cell covers
// two vertical pixels.
func ToHalfBlocks(img *image.Gray, cols, rows int) string {
	var result strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			topOn := brightness(img, col, row*2) > threshold
			bottomOn := brightness(img, col, row*2+1) > threshold

			switch {
			case topOn && bottomOn:
				result.WriteRune('█')
			case topOn:
				result.WriteRune('▀')
			case bottomOn:
				result.WriteRune('▄')
			default:
				result.WriteRune(' ')
			}
		}
		if row < rows-1 {
			result.WriteRune('\n')
		}
	}

	return result.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return 0
	}
	return img.GrayAt(x, y).Y
}
