package core

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

func newTestFont(t *testing.T) *sfnt.Font {
	t.Helper()
	f, err := sfnt.Parse(DefaultFontBytes())
	require.NoError(t, err)
	return f
}

func flatStyle(size float32) TextStyle {
	s := DefaultTextStyle()
	s.Size = size
	s.BevelEnabled = false
	return s
}

func width(m *TextMesh) float32 { return m.Max.X() - m.Min.X() }

func TestBuildTextMesh_Centered(t *testing.T) {
	mesh, err := BuildTextMesh(newTestFont(t), "Hello Go", DefaultTextStyle())
	require.NoError(t, err)

	require.NotEmpty(t, mesh.Vertices)
	assert.Zero(t, len(mesh.Vertices)%3)

	center := mesh.Min.Add(mesh.Max).Mul(0.5)
	assert.InDelta(t, 0, center.X(), 1e-5)
	assert.InDelta(t, 0, center.Y(), 1e-5)
	assert.InDelta(t, 0, center.Z(), 1e-5)
	assert.Greater(t, width(mesh), mesh.Max.Y()-mesh.Min.Y())
}

func TestBuildTextMesh_DepthIncludesBevel(t *testing.T) {
	f := newTestFont(t)

	bevelled, err := BuildTextMesh(f, "H", DefaultTextStyle())
	require.NoError(t, err)
	assert.InDelta(t, 0.2+2*0.03, bevelled.Max.Z()-bevelled.Min.Z(), 1e-5)

	flat, err := BuildTextMesh(f, "H", flatStyle(DefaultTextSize))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, flat.Max.Z()-flat.Min.Z(), 1e-5)

	// The bevel pushes the vertical stems of H out by its size on each side.
	assert.InDelta(t, 2*DefaultBevelSize, width(bevelled)-width(flat), 1e-3)
	assert.Greater(t, len(bevelled.Vertices), len(flat.Vertices))
}

func TestBuildTextMesh_Scale(t *testing.T) {
	f := newTestFont(t)

	small, err := BuildTextMesh(f, "Go", flatStyle(0.5))
	require.NoError(t, err)
	big, err := BuildTextMesh(f, "Go", flatStyle(1.0))
	require.NoError(t, err)

	assert.InDelta(t, 2*width(small), width(big), 1e-4)
	assert.Len(t, big.Vertices, len(small.Vertices))
}

func TestBuildTextMesh_FlatNormals(t *testing.T) {
	mesh, err := BuildTextMesh(newTestFont(t), "Hi", DefaultTextStyle())
	require.NoError(t, err)

	front, back := 0, 0
	for i := 0; i < len(mesh.Vertices); i += 3 {
		n := mgl32.Vec3(mesh.Vertices[i].Normal)
		assert.InDelta(t, 1, n.Len(), 1e-4)

		// One normal per triangle.
		assert.Equal(t, mesh.Vertices[i].Normal, mesh.Vertices[i+1].Normal)
		assert.Equal(t, mesh.Vertices[i].Normal, mesh.Vertices[i+2].Normal)

		switch {
		case n.ApproxEqual(mgl32.Vec3{0, 0, 1}):
			front++
		case n.ApproxEqual(mgl32.Vec3{0, 0, -1}):
			back++
		}
	}
	assert.Positive(t, front)
	assert.Equal(t, front, back)
}

func TestBuildTextMesh_Multiline(t *testing.T) {
	f := newTestFont(t)

	one, err := BuildTextMesh(f, "ab", DefaultTextStyle())
	require.NoError(t, err)
	two, err := BuildTextMesh(f, "ab\nab", DefaultTextStyle())
	require.NoError(t, err)

	assert.Len(t, two.Vertices, 2*len(one.Vertices))
	assert.Greater(t, two.Max.Y()-two.Min.Y(), one.Max.Y()-one.Min.Y())
	assert.InDelta(t, width(one), width(two), 1e-5)
}

func TestBuildTextMesh_EmptyAndInvalid(t *testing.T) {
	f := newTestFont(t)

	mesh, err := BuildTextMesh(f, "   ", DefaultTextStyle())
	require.NoError(t, err)
	assert.Empty(t, mesh.Vertices)

	_, err = BuildTextMesh(nil, "x", DefaultTextStyle())
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = BuildTextMesh(f, "x", flatStyle(0))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	style := DefaultTextStyle()
	style.Depth = -1
	_, err = BuildTextMesh(f, "x", style)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func glyphShapes(t *testing.T, f *sfnt.Font, r rune) []glyphShape {
	t.Helper()
	var buf sfnt.Buffer
	idx, err := f.GlyphIndex(&buf, r)
	require.NoError(t, err)
	ppem := fixed.I(int(f.UnitsPerEm()))
	contours, err := glyphContours(f, &buf, idx, ppem, point{}, 1/float64(f.UnitsPerEm()), 4)
	require.NoError(t, err)
	return groupContours(contours)
}

func TestGroupContours(t *testing.T) {
	f := newTestFont(t)

	tests := []struct {
		r      rune
		shapes int
		holes  int
	}{
		{'l', 1, 0},
		{'i', 2, 0},
		{'o', 1, 1},
		{'B', 1, 2},
	}

	for _, tt := range tests {
		shapes := glyphShapes(t, f, tt.r)
		require.Len(t, shapes, tt.shapes, "rune %q", tt.r)

		holes := 0
		for _, s := range shapes {
			assert.Positive(t, signedArea(s.outer), "rune %q outer winding", tt.r)
			for _, h := range s.holes {
				assert.Negative(t, signedArea(h), "rune %q hole winding", tt.r)
			}
			holes += len(s.holes)
		}
		assert.Equal(t, tt.holes, holes, "rune %q", tt.r)
	}
}

func triangleArea(pts []point, tris [][3]int) float64 {
	var total float64
	for _, t := range tris {
		total += cross(pts[t[0]], pts[t[1]], pts[t[2]]) / 2
	}
	return total
}

func shapePoints(s glyphShape) []point {
	pts := append([]point(nil), s.outer...)
	for _, h := range s.holes {
		pts = append(pts, h...)
	}
	return pts
}

func TestTriangulate_SquareWithHole(t *testing.T) {
	outer := []point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	hole := []point{{1, 1}, {1, 2}, {2, 2}, {2, 1}}

	tris := triangulate(outer, [][]point{hole})
	assert.Len(t, tris, 8)

	s := glyphShape{outer: outer, holes: [][]point{hole}}
	assert.InDelta(t, 15, triangleArea(shapePoints(s), tris), 1e-9)
}

func TestTriangulate_CoversGlyphArea(t *testing.T) {
	f := newTestFont(t)

	for _, r := range "oBe8A%" {
		for _, s := range glyphShapes(t, f, r) {
			want := signedArea(s.outer)
			for _, h := range s.holes {
				want += signedArea(h)
			}
			got := triangleArea(shapePoints(s), triangulate(s.outer, s.holes))
			assert.InEpsilon(t, want, got, 1e-3, "rune %q", r)
		}
	}
}

func TestExtrusionLayers(t *testing.T) {
	layers := extrusionLayers(DefaultTextStyle())
	require.Len(t, layers, 2*(DefaultBevelSegments+1))

	first, last := layers[0], layers[len(layers)-1]
	assert.InDelta(t, 0.13, first.z, 1e-6)
	assert.InDelta(t, -0.13, last.z, 1e-6)
	assert.Zero(t, first.offset)
	assert.Zero(t, last.offset)

	// The body wall joins the fully expanded rings.
	mid := layers[DefaultBevelSegments]
	assert.InDelta(t, 0.1, mid.z, 1e-6)
	assert.InDelta(t, 0.02, mid.offset, 1e-6)

	assert.Len(t, extrusionLayers(flatStyle(1)), 2)
}

func TestBevelVectors_RightAngle(t *testing.T) {
	square := []point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	bv := bevelVectors(square)

	assert.InDelta(t, -1, bv[0].x, 1e-9)
	assert.InDelta(t, -1, bv[0].y, 1e-9)
	assert.InDelta(t, 1, bv[2].x, 1e-9)
	assert.InDelta(t, 1, bv[2].y, 1e-9)
	assert.InDelta(t, math.Sqrt2, math.Hypot(bv[1].x, bv[1].y), 1e-9)
}
