package assets

import (
	"errors"
	"fmt"
)

// ErrAssetLoad marks any failure to read or decode a startup asset.
var ErrAssetLoad = errors.New("assets: load failed")

type Kind string

const (
	KindTexture Kind = "texture"
	KindFont    Kind = "font"
)

// LoadError describes which asset failed. It matches ErrAssetLoad with
// errors.Is and unwraps to the underlying cause as well.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("assets: %s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrAssetLoad, e.Err}
}
