package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// uploadTexture creates a sampled 2D texture and fills it with pix, which
// holds width*height texels of bytesPerPixel bytes each.
func uploadTexture(device *wgpu.Device, queue *wgpu.Queue, label string, format wgpu.TextureFormat,
	width, height, bytesPerPixel uint32, pix []byte) (*wgpu.Texture, *wgpu.TextureView, error) {
	if width == 0 || height == 0 {
		return nil, nil, fmt.Errorf("texture %s: empty size %dx%d", label, width, height)
	}
	if uint32(len(pix)) < width*height*bytesPerPixel {
		return nil, nil, fmt.Errorf("texture %s: %d bytes for %dx%d", label, len(pix), width, height)
	}

	extent := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, err
	}

	err = queue.WriteTexture(tex.AsImageCopy(), pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  width * bytesPerPixel,
		RowsPerImage: height,
	}, &extent)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func newLinearSampler(device *wgpu.Device) (*wgpu.Sampler, error) {
	return device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
}

// additiveBlend scales the source by its alpha and adds it to the
// destination.
var additiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOne,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
	},
}

// alphaBlend is straight alpha over the destination.
var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}

func depthState(format wgpu.TextureFormat, write bool, compare wgpu.CompareFunction) *wgpu.DepthStencilState {
	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: write,
		DepthCompare:      compare,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0xFFFFFFFF,
		StencilWriteMask:  0xFFFFFFFF,
	}
}
