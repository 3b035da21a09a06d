package assets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func writePNG(t *testing.T, dir string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, "alpha.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestServer_LoadTexture(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(1, 0, color.Gray{Y: 200})
	path := writePNG(t, t.TempDir(), img)

	srv := NewServer()
	tex, err := srv.LoadTexture(context.Background(), path).Await(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	assert.Len(t, tex.Texels, 4*2*4)
	assert.Equal(t, []uint8{200, 200, 200, 255}, tex.Texels[4:8])
	assert.Equal(t, path, tex.Path)

	got, ok := srv.Texture(tex.Id)
	assert.True(t, ok)
	assert.Same(t, tex, got)
}

func TestServer_LoadTexture_EmptyPath(t *testing.T) {
	tex, err := NewServer().LoadTexture(context.Background(), "").Await(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, tex)
}

func TestServer_LoadTexture_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.png")
	_, err := NewServer().LoadTexture(context.Background(), path).Await(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindTexture, le.Kind)
	assert.Equal(t, path, le.Path)
}

func TestServer_LoadTexture_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0644))

	_, err := NewServer().LoadTexture(context.Background(), path).Await(context.Background())
	assert.True(t, errors.Is(err, ErrAssetLoad))
}

func TestServer_LoadFont(t *testing.T) {
	srv := NewServer()

	f, err := srv.LoadFont(context.Background(), "", goregular.TTF).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, f.Data)

	got, ok := srv.Font(f.Id)
	assert.True(t, ok)
	assert.Same(t, f, got)

	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0644))
	f2, err := srv.LoadFont(context.Background(), path, nil).Await(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, f.Id, f2.Id)
}

func TestServer_LoadFont_Failures(t *testing.T) {
	srv := NewServer()
	dir := t.TempDir()

	_, err := srv.LoadFont(context.Background(), filepath.Join(dir, "missing.ttf"), goregular.TTF).Await(context.Background())
	assert.True(t, errors.Is(err, ErrAssetLoad))

	garbage := filepath.Join(dir, "garbage.ttf")
	require.NoError(t, os.WriteFile(garbage, []byte{1, 2, 3}, 0644))
	_, err = srv.LoadFont(context.Background(), garbage, nil).Await(context.Background())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindFont, le.Kind)
}

func TestFuture_AwaitCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	v, err := f.Await(ctx)
	assert.Equal(t, 0, v)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_Resolved(t *testing.T) {
	boom := errors.New("boom")
	f := Resolved(7, boom)

	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future should be done")
	}

	v, err := f.Await(context.Background())
	assert.Equal(t, 7, v)
	assert.Same(t, boom, err)
}

func TestDecodeTexture_SubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 8, 8))
	base.Set(3, 3, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := base.SubImage(image.Rect(2, 2, 5, 5))

	path := writePNG(t, t.TempDir(), sub)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tex, err := DecodeTexture(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Len(t, tex.Texels, 3*3*4)
	// (3,3) in the parent is (1,1) in the decoded image.
	assert.Equal(t, []uint8{9, 8, 7, 255}, tex.Texels[(1*3+1)*4:(1*3+1)*4+4])
}

func TestServer_CreateTexture(t *testing.T) {
	srv := NewServer()
	tex := srv.CreateTexture([]uint8{255, 255, 255, 255}, 1, 1)
	assert.NotEmpty(t, tex.Id)
	_, ok := srv.Texture(tex.Id)
	assert.True(t, ok)
}
