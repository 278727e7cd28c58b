package render

import (
	"context"
	"os/exec"
	"testing"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"svg", "png", "pdf", "json", "dot"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	for _, f := range []string{"", "gif", "SVG"} {
		if err := ValidateFormat(f); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ValidateFormat(%q) = %v, want INVALID_INPUT", f, err)
		}
	}
}

func TestConvertWithoutBinary(t *testing.T) {
	if _, err := exec.LookPath(ConverterBinary); err == nil {
		t.Skip("rsvg-convert installed")
	}
	_, err := ToPNG(context.Background(), []byte("<svg/>"), 2)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG() error = %v, want UNSUPPORTED", err)
	}
}

func TestConvertPNG(t *testing.T) {
	if _, err := exec.LookPath(ConverterBinary); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	png, err := ToPNG(context.Background(), svg, 1)
	if err != nil {
		t.Fatalf("ToPNG() error: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("ToPNG() did not return a PNG")
	}
}
