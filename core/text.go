package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultTextSize       = 0.3
	DefaultTextDepth      = 0.2
	DefaultCurveSegments  = 4
	DefaultBevelThickness = 0.03
	DefaultBevelSize      = 0.02
	DefaultBevelSegments  = 4
)

// MeshVertex matches the vertex layout in text.wgsl.
type MeshVertex struct {
	Pos    [3]float32
	Normal [3]float32
}

// TextStyle controls how glyph outlines become a solid. Size is the em
// height and Depth the extrusion before the bevel, both in world units.
type TextStyle struct {
	Size          float32
	Depth         float32
	CurveSegments int

	BevelEnabled   bool
	BevelThickness float32
	BevelSize      float32
	BevelSegments  int
}

func DefaultTextStyle() TextStyle {
	return TextStyle{
		Size:           DefaultTextSize,
		Depth:          DefaultTextDepth,
		CurveSegments:  DefaultCurveSegments,
		BevelEnabled:   true,
		BevelThickness: DefaultBevelThickness,
		BevelSize:      DefaultBevelSize,
		BevelSegments:  DefaultBevelSegments,
	}
}

// TextMesh is extruded text as a flat-shaded triangle list centered on the
// origin.
type TextMesh struct {
	Text     string
	Vertices []MeshVertex
	Min, Max mgl32.Vec3
}

// BuildTextMesh extrudes the outlines of text along Z. Front faces point
// towards +Z. Runes the font has no glyph for are skipped.
func BuildTextMesh(f *sfnt.Font, text string, style TextStyle) (*TextMesh, error) {
	if f == nil {
		return nil, fmt.Errorf("font is nil: %w", ErrInvalidArgument)
	}
	if !(style.Size > 0) || !(style.Depth >= 0) || style.BevelThickness < 0 || style.BevelSize < 0 {
		return nil, fmt.Errorf("text style %+v: %w", style, ErrInvalidArgument)
	}
	curveSegments := max(style.CurveSegments, 1)

	var buf sfnt.Buffer
	upem := f.UnitsPerEm()
	ppem := fixed.I(int(upem))
	scale := float64(style.Size) / float64(upem)

	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	lineHeight := unitsToWorld(metrics.Height, scale)
	layers := extrusionLayers(style)

	mesh := &TextMesh{Text: text}
	pen := point{}
	var prev sfnt.GlyphIndex
	for _, r := range text {
		if r == '\n' {
			pen = point{0, pen.y - lineHeight}
			prev = 0
			continue
		}
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			continue
		}
		if prev != 0 {
			// Fonts without a kern table report an error here.
			if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen.x += unitsToWorld(k, scale)
			}
		}
		prev = idx

		contours, err := glyphContours(f, &buf, idx, ppem, pen, scale, curveSegments)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}
		for _, sh := range groupContours(contours) {
			mesh.Vertices = extrudeShape(mesh.Vertices, sh, layers)
		}

		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph %q advance: %w", r, err)
		}
		pen.x += unitsToWorld(adv, scale)
	}

	mesh.center()
	return mesh, nil
}

func unitsToWorld(v fixed.Int26_6, scale float64) float64 {
	return float64(v) / 64 * scale
}

func (m *TextMesh) center() {
	if len(m.Vertices) == 0 {
		return
	}
	lo := mgl32.Vec3(m.Vertices[0].Pos)
	hi := lo
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Pos[k])
			hi[k] = max(hi[k], v.Pos[k])
		}
	}

	c := lo.Add(hi).Mul(0.5)
	for i := range m.Vertices {
		p := &m.Vertices[i].Pos
		p[0] -= c[0]
		p[1] -= c[1]
		p[2] -= c[2]
	}
	m.Min = lo.Sub(c)
	m.Max = hi.Sub(c)
}

type point struct{ x, y float64 }

func (p point) add(q point) point     { return point{p.x + q.x, p.y + q.y} }
func (p point) scale(s float64) point { return point{p.x * s, p.y * s} }

func (p point) near(q point) bool {
	return math.Abs(p.x-q.x) < 1e-9 && math.Abs(p.y-q.y) < 1e-9
}

func cross(o, a, b point) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

func lerp(a, b point, t float64) point {
	return point{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t}
}

func reversed(c []point) []point {
	out := make([]point, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

// signedArea is positive for counter-clockwise contours (Y up).
func signedArea(c []point) float64 {
	var a float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func pointInPolygon(p point, poly []point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.y > p.y) != (b.y > p.y) && p.x < (b.x-a.x)*(p.y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}

// glyphContours flattens one glyph outline into closed polygons placed at
// origin, in world units with Y up.
func glyphContours(f *sfnt.Font, buf *sfnt.Buffer, idx sfnt.GlyphIndex, ppem fixed.Int26_6, origin point, scale float64, curveSegments int) ([][]point, error) {
	segments, err := f.LoadGlyph(buf, idx, ppem, nil)
	if err != nil {
		return nil, err
	}

	// sfnt's Y axis points down.
	toWorld := func(p fixed.Point26_6) point {
		return point{origin.x + unitsToWorld(p.X, scale), origin.y - unitsToWorld(p.Y, scale)}
	}

	var contours [][]point
	var cur []point
	flush := func() {
		if c := cleanContour(cur); c != nil {
			contours = append(contours, c)
		}
		cur = nil
	}

	for _, s := range segments {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			cur = append(cur, toWorld(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = append(cur, toWorld(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2 := cur[len(cur)-1], toWorld(s.Args[0]), toWorld(s.Args[1])
			for i := 1; i <= curveSegments; i++ {
				t := float64(i) / float64(curveSegments)
				cur = append(cur, lerp(lerp(p0, p1, t), lerp(p1, p2, t), t))
			}
		case sfnt.SegmentOpCubeTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2, p3 := cur[len(cur)-1], toWorld(s.Args[0]), toWorld(s.Args[1]), toWorld(s.Args[2])
			for i := 1; i <= curveSegments; i++ {
				t := float64(i) / float64(curveSegments)
				a, b, c := lerp(p0, p1, t), lerp(p1, p2, t), lerp(p2, p3, t)
				cur = append(cur, lerp(lerp(a, b, t), lerp(b, c, t), t))
			}
		}
	}
	flush()
	return contours, nil
}

// cleanContour drops repeated points and the closing point, returning nil
// for contours that enclose nothing.
func cleanContour(c []point) []point {
	out := make([]point, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && out[len(out)-1].near(p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].near(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 || math.Abs(signedArea(out)) < 1e-12 {
		return nil
	}
	return out
}

// glyphShape is one filled region: a counter-clockwise outer contour and
// the clockwise holes inside it.
type glyphShape struct {
	outer []point
	holes [][]point
}

// groupContours classifies contours by nesting depth: even depth is an
// outer contour, odd depth is a hole of the smallest outer that contains it.
func groupContours(contours [][]point) []glyphShape {
	depth := make([]int, len(contours))
	area := make([]float64, len(contours))
	for i, c := range contours {
		area[i] = signedArea(c)
		for j, o := range contours {
			if i != j && pointInPolygon(c[0], o) {
				depth[i]++
			}
		}
	}

	var shapes []glyphShape
	shapeOf := make(map[int]int)
	for i, c := range contours {
		if depth[i]%2 != 0 {
			continue
		}
		if area[i] < 0 {
			c = reversed(c)
		}
		shapeOf[i] = len(shapes)
		shapes = append(shapes, glyphShape{outer: c})
	}

	for i, c := range contours {
		if depth[i]%2 == 0 {
			continue
		}
		parent := -1
		for j := range contours {
			if depth[j]%2 != 0 || !pointInPolygon(c[0], contours[j]) {
				continue
			}
			if parent < 0 || math.Abs(area[j]) < math.Abs(area[parent]) {
				parent = j
			}
		}
		if parent < 0 {
			continue
		}
		if area[i] > 0 {
			c = reversed(c)
		}
		s := &shapes[shapeOf[parent]]
		s.holes = append(s.holes, c)
	}
	return shapes
}

// triangulate ear-clips a shape after bridging every hole into the outer
// contour. Indices refer to the outer points followed by each hole's points
// in order. Triangles are counter-clockwise.
func triangulate(outer []point, holes [][]point) [][3]int {
	pts := append([]point(nil), outer...)
	poly := make([]int, len(outer))
	for i := range poly {
		poly[i] = i
	}

	type holeRef struct{ start, n, right int }
	refs := make([]holeRef, 0, len(holes))
	for _, h := range holes {
		right := 0
		for k := range h {
			if h[k].x > h[right].x {
				right = k
			}
		}
		refs = append(refs, holeRef{len(pts), len(h), right})
		pts = append(pts, h...)
	}
	// Bridge the rightmost hole first so later bridges can reach the outer
	// contour through earlier holes.
	sort.Slice(refs, func(a, b int) bool {
		return pts[refs[a].start+refs[a].right].x > pts[refs[b].start+refs[b].right].x
	})

	for _, h := range refs {
		at := findBridge(pts, poly, pts[h.start+h.right])
		if at < 0 {
			continue
		}
		merged := make([]int, 0, len(poly)+h.n+2)
		merged = append(merged, poly[:at+1]...)
		for k := 0; k <= h.n; k++ {
			merged = append(merged, h.start+(h.right+k)%h.n)
		}
		merged = append(merged, poly[at])
		merged = append(merged, poly[at+1:]...)
		poly = merged
	}

	return earClip(pts, poly)
}

// findBridge returns the position in poly of a vertex visible from m along
// the +X ray, or -1 when poly is empty.
func findBridge(pts []point, poly []int, m point) int {
	n := len(poly)
	best := -1
	hitX := math.Inf(1)
	for i := 0; i < n; i++ {
		a, b := pts[poly[i]], pts[poly[(i+1)%n]]
		if (a.y > m.y) == (b.y > m.y) {
			continue
		}
		x := a.x + (m.y-a.y)*(b.x-a.x)/(b.y-a.y)
		if x < m.x || x >= hitX {
			continue
		}
		hitX = x
		if a.x > b.x {
			best = i
		} else {
			best = (i + 1) % n
		}
	}

	if best < 0 {
		nearest := math.Inf(1)
		for i := 0; i < n; i++ {
			p := pts[poly[i]]
			if d := math.Hypot(p.x-m.x, p.y-m.y); d < nearest {
				best, nearest = i, d
			}
		}
		return best
	}

	// A vertex inside the triangle (m, hit, candidate) would block the
	// bridge; take the one closest in angle to the ray instead.
	hit, cand := point{hitX, m.y}, pts[poly[best]]
	bestTan := math.Inf(1)
	for i := 0; i < n; i++ {
		p := pts[poly[i]]
		if i == best || p.x < m.x || p.near(cand) || !inTriangle(p, m, hit, cand) {
			continue
		}
		tan := math.Abs(p.y-m.y) / (p.x - m.x)
		if tan < bestTan {
			best, bestTan = i, tan
		}
	}
	return best
}

// inTriangle accepts points on the boundary, whatever the winding.
func inTriangle(p, a, b, c point) bool {
	d1, d2, d3 := cross(a, b, p), cross(b, c, p), cross(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

func earClip(pts []point, poly []int) [][3]int {
	idx := append([]int(nil), poly...)
	tris := make([][3]int, 0, len(idx))

	start := 0
	for len(idx) > 3 {
		n := len(idx)
		clipped := false
		for k := 0; k < n; k++ {
			i := (start + k) % n
			ia, ib, ic := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			if !isEar(pts, idx, ia, ib, ic) {
				continue
			}
			tris = append(tris, [3]int{ia, ib, ic})
			idx = append(idx[:i], idx[i+1:]...)
			start = i
			clipped = true
			break
		}
		if clipped {
			continue
		}

		// No ear left means collinear or self-touching input; drop the
		// flattest vertex and carry on.
		drop, flattest := 0, math.Inf(1)
		for i := 0; i < n; i++ {
			a := math.Abs(cross(pts[idx[(i+n-1)%n]], pts[idx[i]], pts[idx[(i+1)%n]]))
			if a < flattest {
				drop, flattest = i, a
			}
		}
		idx = append(idx[:drop], idx[drop+1:]...)
		start = 0
	}

	if len(idx) == 3 && cross(pts[idx[0]], pts[idx[1]], pts[idx[2]]) > 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func isEar(pts []point, idx []int, ia, ib, ic int) bool {
	a, b, c := pts[ia], pts[ib], pts[ic]
	if cross(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == ia || k == ib || k == ic {
			continue
		}
		p := pts[k]
		if p.near(a) || p.near(b) || p.near(c) {
			continue
		}
		if inTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// layer is one ring of the extrusion: every contour point pushed outwards
// by offset, at height z.
type layer struct {
	z, offset float64
}

// extrusionLayers runs from the front cap to the back cap. The bevel
// follows a quarter circle on each side.
func extrusionLayers(s TextStyle) []layer {
	half := float64(s.Depth) / 2
	if !s.BevelEnabled || s.BevelSegments < 1 || (s.BevelThickness == 0 && s.BevelSize == 0) {
		return []layer{{half, 0}, {-half, 0}}
	}

	n := s.BevelSegments
	thickness, size := float64(s.BevelThickness), float64(s.BevelSize)
	out := make([]layer, 0, 2*(n+1))
	for b := 0; b <= n; b++ {
		t := float64(b) / float64(n) * math.Pi / 2
		out = append(out, layer{half + thickness*math.Cos(t), size * math.Sin(t)})
	}
	for b := n; b >= 0; b-- {
		t := float64(b) / float64(n) * math.Pi / 2
		out = append(out, layer{-half - thickness*math.Cos(t), size * math.Sin(t)})
	}
	return out
}

// edgeNormal points away from the filled side for both counter-clockwise
// outers and clockwise holes.
func edgeNormal(a, b point) point {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return point{}
	}
	return point{dy / l, -dx / l}
}

// bevelVectors returns per-point miter directions scaled so that each
// adjacent edge moves outwards by one unit. Sharp corners are capped at 2.
func bevelVectors(c []point) []point {
	n := len(c)
	out := make([]point, n)
	for i := range c {
		n1 := edgeNormal(c[(i+n-1)%n], c[i])
		n2 := edgeNormal(c[i], c[(i+1)%n])
		m := n1.add(n2)
		l := math.Hypot(m.x, m.y)
		if l < 1e-9 {
			out[i] = n1
			continue
		}
		m = m.scale(1 / l)
		s := 2.0
		if d := m.x*n1.x + m.y*n1.y; d > 0.5 {
			s = 1 / d
		}
		out[i] = m.scale(s)
	}
	return out
}

func extrudeShape(out []MeshVertex, sh glyphShape, layers []layer) []MeshVertex {
	contours := append([][]point{sh.outer}, sh.holes...)
	var flat []point
	for _, c := range contours {
		flat = append(flat, c...)
	}

	at := func(p point, z float64) mgl32.Vec3 {
		return mgl32.Vec3{float32(p.x), float32(p.y), float32(z)}
	}

	front, back := layers[0], layers[len(layers)-1]
	for _, t := range triangulate(sh.outer, sh.holes) {
		a, b, c := flat[t[0]], flat[t[1]], flat[t[2]]
		out = appendTriangle(out, at(a, front.z), at(b, front.z), at(c, front.z))
		out = appendTriangle(out, at(a, back.z), at(c, back.z), at(b, back.z))
	}

	for _, c := range contours {
		bv := bevelVectors(c)
		ring := func(i int, l layer) mgl32.Vec3 {
			return at(c[i].add(bv[i].scale(l.offset)), l.z)
		}
		for k := 0; k+1 < len(layers); k++ {
			l0, l1 := layers[k], layers[k+1]
			for i := range c {
				j := (i + 1) % len(c)
				a, b := ring(i, l0), ring(j, l0)
				cc, d := ring(j, l1), ring(i, l1)
				out = appendTriangle(out, a, cc, b)
				out = appendTriangle(out, a, d, cc)
			}
		}
	}
	return out
}

// appendTriangle adds a flat-shaded triangle, skipping degenerate ones.
func appendTriangle(out []MeshVertex, a, b, c mgl32.Vec3) []MeshVertex {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return out
	}
	n = n.Normalize()
	return append(out,
		MeshVertex{Pos: a, Normal: n},
		MeshVertex{Pos: b, Normal: n},
		MeshVertex{Pos: c, Normal: n},
	)
}
