// Package frame turns still images into the JPEG frames the face detector accepts.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// DefaultQuality is the JPEG quality used when re-encoding frames.
const DefaultQuality = 90

var (
	// ErrEmptyFrame is returned for zero-length input.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrInvalidFrame wraps decode failures.
	ErrInvalidFrame = errors.New("invalid frame")
)

// Normalize decodes a JPEG, PNG, GIF or BMP frame and re-encodes it as JPEG,
// scaling it down to fit within maxSize (width or height) while keeping the
// aspect ratio. A maxSize of zero or less disables scaling.
func Normalize(data []byte, maxSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxSize > 0 && (width > maxSize || height > maxSize) {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxSize
			newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
		} else {
			newHeight = maxSize
			newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: DefaultQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile loads an image file as a raw frame.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("reading frame %s: %w", path, ErrEmptyFrame)
	}
	return data, nil
}
