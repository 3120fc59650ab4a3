// Package facerec extracts face descriptors from frames.
//
// The recognition backend lives in facerec/dlib; this package only depends on
// the Detector interface so it can be tested without cgo.
package facerec

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kozaktomas/clinic-admin/internal/frame"
	"github.com/rs/zerolog/log"
)

// DescriptorSize is the length of a dlib face descriptor.
const DescriptorSize = 128

// ErrModelsNotLoaded is returned when detection runs before LoadModels
// and the backend has been constructed.
var ErrModelsNotLoaded = errors.New("face models not loaded")

// Descriptor is a face embedding.
type Descriptor []float32

// Face is one detected face.
type Face struct {
	Rect       image.Rectangle
	Descriptor Descriptor
}

// Detector finds faces in a JPEG frame and computes their descriptors.
type Detector interface {
	Detect(jpeg []byte) ([]Face, error)
}

// Extractor turns frames into a single descriptor.
type Extractor struct {
	detector     Detector
	maxFrameSize int
}

// NewExtractor creates an extractor. Frames larger than maxFrameSize on
// either side are scaled down before detection.
func NewExtractor(detector Detector, maxFrameSize int) *Extractor {
	return &Extractor{detector: detector, maxFrameSize: maxFrameSize}
}

// GetFaceDescriptor returns the descriptor of the most prominent face in
// frameData, or nil when no face is found.
func (e *Extractor) GetFaceDescriptor(ctx context.Context, frameData []byte) (Descriptor, error) {
	if e == nil || e.detector == nil {
		return nil, ErrModelsNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jpeg, err := frame.Normalize(frameData, e.maxFrameSize)
	if err != nil {
		return nil, err
	}

	faces, err := e.detector.Detect(jpeg)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(faces) == 0 {
		log.Debug().Msg("no face in frame")
		return nil, nil
	}

	best := primaryFace(faces)
	log.Debug().Int("faces", len(faces)).Str("rect", best.Rect.String()).Msg("face detected")
	return best.Descriptor, nil
}

// primaryFace picks the largest detection; the backend reports no scores.
func primaryFace(faces []Face) Face {
	best := faces[0]
	bestArea := area(best.Rect)
	for _, f := range faces[1:] {
		if a := area(f.Rect); a > bestArea {
			best, bestArea = f, a
		}
	}
	return best
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
