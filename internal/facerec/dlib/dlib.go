// Package dlib implements facerec.Detector on top of go-face.
package dlib

import (
	"fmt"
	"sync"

	face "github.com/Kagami/go-face"
	"github.com/kozaktomas/clinic-admin/internal/facerec"
	"github.com/rs/zerolog/log"
)

// Recognizer wraps a go-face recognizer. The zero value is not loaded.
type Recognizer struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

var _ facerec.Detector = (*Recognizer)(nil)

// New loads the detector, landmark and recognition models from modelsDir.
func New(modelsDir string) (*Recognizer, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading face models from %s: %w", modelsDir, err)
	}
	log.Debug().Str("dir", modelsDir).Msg("face models loaded")
	return &Recognizer{rec: rec}, nil
}

// Detect runs HOG detection on a JPEG frame.
// The underlying recognizer is not safe for concurrent use.
func (r *Recognizer) Detect(jpeg []byte) ([]facerec.Face, error) {
	if r == nil {
		return nil, facerec.ErrModelsNotLoaded
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rec == nil {
		return nil, facerec.ErrModelsNotLoaded
	}

	faces, err := r.rec.Recognize(jpeg)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	result := make([]facerec.Face, len(faces))
	for i, f := range faces {
		desc := make(facerec.Descriptor, len(f.Descriptor))
		copy(desc, f.Descriptor[:])
		result[i] = facerec.Face{Rect: f.Rectangle, Descriptor: desc}
	}
	return result, nil
}

// Close releases the native recognizer.
func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec != nil {
		r.rec.Close()
		r.rec = nil
	}
}
