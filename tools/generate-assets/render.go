// render.go draws the presence icons. The playback icons are vector shapes;
// vlc_icon is a text label set in the configured font.

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Asset keys the daemon references, without the theme prefix.
const (
	IconVLC   = "vlc_icon"
	IconPlay  = "play_icon"
	IconPause = "pause_icon"
	IconStop  = "stop_icon"
)

// Icons lists every asset rendered per theme.
var Icons = []string{IconVLC, IconPlay, IconPause, IconStop}

// vlcLabel is the text drawn on vlc_icon.
const vlcLabel = "VLC"

// RenderIcon renders one icon as PNG bytes. otFont is only read for vlc_icon.
func RenderIcon(style Style, icon string, otFont *opentype.Font) ([]byte, error) {
	bg, err := ParseHexColor(style.BgColor)
	if err != nil {
		return nil, fmt.Errorf("parse bg_color: %w", err)
	}
	fg, err := ParseHexColor(style.FgColor)
	if err != nil {
		return nil, fmt.Errorf("parse fg_color: %w", err)
	}

	size := style.Size
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	s := float32(size)
	lo, hi := s/4, s*3/4
	switch icon {
	case IconVLC:
		if otFont == nil {
			return nil, fmt.Errorf("%s needs a font", icon)
		}
		if err := drawLabel(img, fg, otFont, style.FontSize, vlcLabel); err != nil {
			return nil, err
		}
	case IconPlay:
		// Nudged right so the triangle looks centered.
		dx := s / 24
		fill(img, fg, [][2]float32{{lo + dx, lo}, {hi + dx, s / 2}, {lo + dx, hi}})
	case IconPause:
		bar := (hi - lo) / 3
		fill(img, fg, rect(lo, lo, lo+bar, hi))
		fill(img, fg, rect(hi-bar, lo, hi, hi))
	case IconStop:
		fill(img, fg, rect(lo, lo, hi, hi))
	default:
		return nil, fmt.Errorf("unknown icon %q", icon)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func rect(x0, y0, x1, y1 float32) [][2]float32 {
	return [][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// fill rasterizes a closed polygon onto dst.
func fill(dst draw.Image, c color.Color, pts [][2]float32) {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		r.LineTo(p[0], p[1])
	}
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawLabel centers text on dst using the glyph bounds rather than the
// font metrics.
func drawLabel(dst draw.Image, c color.Color, otFont *opentype.Font, pt int, text string) error {
	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    float64(pt),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, text)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	size := dst.Bounds().Dx()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P((size-w)/2-bounds.Min.X.Floor(), (size-h)/2-bounds.Min.Y.Floor()),
	}
	d.DrawString(text)
	return nil
}
