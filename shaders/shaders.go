package shaders

import (
	_ "embed"
)

//go:embed points.wgsl
var PointsWGSL string

//go:embed text.wgsl
var TextWGSL string

//go:embed overlay.wgsl
var OverlayWGSL string
