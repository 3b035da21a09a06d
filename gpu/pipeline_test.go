package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestPointsTarget_Additive(t *testing.T) {
	target := pointsTarget(wgpu.TextureFormatBGRA8Unorm)

	assert.Same(t, additiveBlend, target.Blend)
	assert.Equal(t, wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOne,
	}, target.Blend.Color)
	assert.Equal(t, wgpu.BlendFactorOne, target.Blend.Alpha.DstFactor)
}

func TestTextAndOverlayTargets(t *testing.T) {
	assert.Nil(t, textTarget(wgpu.TextureFormatBGRA8Unorm).Blend, "text mesh is opaque")

	overlay := overlayTarget(wgpu.TextureFormatBGRA8Unorm)
	assert.Same(t, alphaBlend, overlay.Blend)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, overlay.Blend.Color.DstFactor)
}

func TestDepthState(t *testing.T) {
	points := depthState(depthFormat, false, wgpu.CompareFunctionLess)
	assert.False(t, points.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, points.DepthCompare)

	overlay := depthState(depthFormat, false, wgpu.CompareFunctionAlways)
	assert.Equal(t, wgpu.CompareFunctionAlways, overlay.DepthCompare)
	assert.Equal(t, depthFormat, overlay.Format)
}
