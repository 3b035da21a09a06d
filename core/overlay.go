package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const atlasSize = 1024

// GlyphVertex matches the vertex layout in overlay.wgsl. Pos is in logical
// pixels from the top-left corner of the viewport.
type GlyphVertex struct {
	Pos [2]float32
	UV  [2]float32
}

type GlyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
}

// FontAtlas rasterizes the printable ASCII range of one face into a single
// alpha texture.
type FontAtlas struct {
	AtlasImage *image.Alpha
	Glyphs     map[rune]GlyphInfo
	Advances   map[rune]float32
	PixelSize  float32
	LineHeight float32
	Ascent     float32
	Face       font.Face
}

// DefaultFontBytes is the Go Regular face, used when no font file is set.
func DefaultFontBytes() []byte {
	return goregular.TTF
}

func NewFontAtlas(fontBytes []byte, pixelSize float64) (*FontAtlas, error) {
	if pixelSize <= 0 {
		return nil, fmt.Errorf("font size %v: %w", pixelSize, ErrInvalidArgument)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pixelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]GlyphInfo)
	advances := make(map[rune]float32)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		advances[r] = float32(adv) / 64.0

		bounds, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok || bounds.Empty() {
			continue
		}

		w := bounds.Dx()
		h := bounds.Dy()

		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)

		glyphs[r] = GlyphInfo{
			UVMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			UVMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	m := face.Metrics()
	return &FontAtlas{
		AtlasImage: atlas,
		Glyphs:     glyphs,
		Advances:   advances,
		PixelSize:  float32(pixelSize),
		LineHeight: float32(m.Height.Ceil()),
		Ascent:     float32(m.Ascent.Ceil()),
		Face:       face,
	}, nil
}

// Overlay is screen-space text drawn on top of the scene, used for the
// frame stats in debug mode.
type Overlay struct {
	Atlas  *FontAtlas
	Text   string
	Origin [2]float32
	Color  [4]float32
}

func NewOverlay(atlas *FontAtlas, color [4]float32) *Overlay {
	return &Overlay{Atlas: atlas, Origin: [2]float32{8, 8}, Color: color}
}

// Layout places one quad per inked glyph, starting at Origin with the first
// line's top edge on Origin's y.
func (o *Overlay) Layout() []GlyphVertex {
	a := o.Atlas
	if a == nil || o.Text == "" {
		return nil
	}

	verts := make([]GlyphVertex, 0, len(o.Text)*6)
	penX, baseline := o.Origin[0], o.Origin[1]+a.Ascent
	prev := rune(-1)
	for _, r := range o.Text {
		if r == '\n' {
			penX = o.Origin[0]
			baseline += a.LineHeight
			prev = -1
			continue
		}
		if prev >= 0 && a.Face != nil {
			penX += float32(a.Face.Kern(prev, r)) / 64.0
		}
		prev = r

		if g, ok := a.Glyphs[r]; ok {
			x0 := penX + g.Off[0]
			y0 := baseline + g.Off[1]
			x1 := x0 + g.Size[0]
			y1 := y0 + g.Size[1]

			tl := GlyphVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}}
			tr := GlyphVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}}
			bl := GlyphVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}}
			br := GlyphVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}}

			verts = append(verts, tl, bl, tr, tr, bl, br)
		}
		penX += a.Advances[r]
	}
	return verts
}
