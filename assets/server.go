package assets

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font/opentype"
	_ "golang.org/x/image/webp"
)

type AssetId string

// Texture is a decoded RGBA8 image.
type Texture struct {
	Id     AssetId
	Path   string
	Texels []uint8
	Width  uint32
	Height uint32
}

// Font holds a TTF/OTF file and its parsed outlines.
type Font struct {
	Id     AssetId
	Path   string
	Data   []byte
	Parsed *opentype.Font
}

// Server keeps every asset loaded during startup. Loads run concurrently, so
// the registry is guarded.
type Server struct {
	mu       sync.Mutex
	textures map[AssetId]*Texture
	fonts    map[AssetId]*Font
}

func NewServer() *Server {
	return &Server{
		textures: make(map[AssetId]*Texture),
		fonts:    make(map[AssetId]*Font),
	}
}

// LoadTexture decodes an image file (PNG, JPEG, BMP, WebP) in the
// background. An empty path resolves to a nil texture without error.
func (s *Server) LoadTexture(ctx context.Context, path string) *Future[*Texture] {
	if path == "" {
		return Resolved[*Texture](nil, nil)
	}
	return Go(ctx, func(ctx context.Context) (*Texture, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Kind: KindTexture, Path: path, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tex, err := DecodeTexture(data)
		if err != nil {
			return nil, &LoadError{Kind: KindTexture, Path: path, Err: err}
		}
		tex.Path = path
		s.addTexture(tex)
		return tex, nil
	})
}

// LoadFont reads and validates a font file in the background. An empty path
// resolves to the embedded default face.
func (s *Server) LoadFont(ctx context.Context, path string, fallback []byte) *Future[*Font] {
	return Go(ctx, func(ctx context.Context) (*Font, error) {
		data := fallback
		if path != "" {
			var err error
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, &LoadError{Kind: KindFont, Path: path, Err: err}
			}
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, &LoadError{Kind: KindFont, Path: path, Err: err}
		}
		f := &Font{Id: makeAssetId(), Path: path, Data: data, Parsed: parsed}
		s.mu.Lock()
		s.fonts[f.Id] = f
		s.mu.Unlock()
		return f, nil
	})
}

// CreateTexture registers texels that did not come from a file.
func (s *Server) CreateTexture(texels []uint8, width, height uint32) *Texture {
	tex := &Texture{Texels: texels, Width: width, Height: height}
	s.addTexture(tex)
	return tex
}

func (s *Server) Texture(id AssetId) (*Texture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.textures[id]
	return t, ok
}

func (s *Server) Font(id AssetId) (*Font, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fonts[id]
	return f, ok
}

func (s *Server) addTexture(tex *Texture) {
	tex.Id = makeAssetId()
	s.mu.Lock()
	s.textures[tex.Id] = tex
	s.mu.Unlock()
}

// DecodeTexture converts any registered image format to tightly packed RGBA8.
func DecodeTexture(data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &Texture{
		Texels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
