package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAtlas(t *testing.T) *FontAtlas {
	t.Helper()
	atlas, err := NewFontAtlas(DefaultFontBytes(), 16)
	require.NoError(t, err)
	return atlas
}

func TestNewFontAtlas(t *testing.T) {
	atlas := newTestAtlas(t)

	assert.Contains(t, atlas.Glyphs, 'A')
	assert.Contains(t, atlas.Glyphs, 'z')
	assert.NotContains(t, atlas.Glyphs, ' ', "space has no ink")
	assert.Greater(t, atlas.Advances[' '], float32(0))
	assert.Greater(t, atlas.LineHeight, float32(0))
	assert.Greater(t, atlas.Ascent, float32(0))

	g := atlas.Glyphs['A']
	assert.Less(t, g.UVMin[0], g.UVMax[0])
	assert.Less(t, g.UVMin[1], g.UVMax[1])
}

func TestNewFontAtlas_Errors(t *testing.T) {
	_, err := NewFontAtlas([]byte("not a font"), 16)
	assert.Error(t, err)

	_, err = NewFontAtlas(DefaultFontBytes(), 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestOverlay_Layout(t *testing.T) {
	o := NewOverlay(newTestAtlas(t), [4]float32{1, 1, 1, 1})
	assert.Nil(t, o.Layout())

	o.Text = "fps 60"
	verts := o.Layout()

	// Five inked glyphs, the space is skipped.
	require.Len(t, verts, 5*6)
	for _, v := range verts {
		assert.GreaterOrEqual(t, v.Pos[1], o.Origin[1]-1)
	}
	assert.Less(t, verts[0].Pos[0], verts[len(verts)-1].Pos[0])
}

func TestOverlay_LayoutMultiline(t *testing.T) {
	o := NewOverlay(newTestAtlas(t), [4]float32{1, 1, 1, 1})

	o.Text = "ab\nab"
	verts := o.Layout()
	require.Len(t, verts, 4*6)

	first, second := verts[0], verts[2*6]
	assert.InDelta(t, first.Pos[0], second.Pos[0], 1e-5)
	assert.InDelta(t, o.Atlas.LineHeight, second.Pos[1]-first.Pos[1], 1e-5)
}

func TestOverlay_NoAtlas(t *testing.T) {
	o := &Overlay{Text: "x"}
	assert.Nil(t, o.Layout())
}
