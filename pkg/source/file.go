package source

import (
	"context"
	"os"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// File replays a saved visualize response. The input text is only
// validated; the stream always comes from the file.
type File struct {
	Path string
}

// NewFile creates a source that reads path on every fetch.
func NewFile(path string) *File { return &File{Path: path} }

// Name returns "file".
func (f *File) Name() string { return "file" }

// Fetch reads and decodes the file.
func (f *File) Fetch(ctx context.Context, input string) (*Result, error) {
	return observe(ctx, f.Name(), input, func() (*Result, error) {
		if _, err := errors.NormalizeInput(input); err != nil {
			return nil, err
		}
		return f.Load()
	})
}

// Load reads and decodes the file without an input.
func (f *File) Load() (*Result, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", f.Path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", f.Path)
	}
	resp, err := DecodeResponse(data)
	if err != nil {
		return nil, err
	}
	return resp.Result(), nil
}
