package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kozaktomas/clinic-admin/internal/facematch"
	"github.com/kozaktomas/clinic-admin/internal/facerec"
	"github.com/kozaktomas/clinic-admin/internal/frame"
	"github.com/rs/zerolog/log"
)

// maxFrameBytes bounds the accepted frame upload.
const maxFrameBytes = 20 << 20

// DescriptorExtractor computes a face descriptor from a raw frame.
type DescriptorExtractor interface {
	GetFaceDescriptor(ctx context.Context, frameData []byte) (facerec.Descriptor, error)
}

// FacesHandler serves descriptor extraction and matching.
type FacesHandler struct {
	extractor DescriptorExtractor
	matcher   *facematch.Matcher
}

// NewFacesHandler creates a new faces handler. Either dependency may be nil;
// the matching endpoint then answers 503.
func NewFacesHandler(extractor DescriptorExtractor, matcher *facematch.Matcher) *FacesHandler {
	return &FacesHandler{extractor: extractor, matcher: matcher}
}

// DescriptorResponse is returned by the descriptor endpoint.
// Descriptor is null when the frame holds no face.
type DescriptorResponse struct {
	Descriptor facerec.Descriptor `json:"descriptor"`
}

// MatchRequest is the body of the match endpoint.
type MatchRequest struct {
	Descriptor []float32 `json:"descriptor"`
}

// Descriptor takes a raw image body and returns the descriptor of its face.
func (h *FacesHandler) Descriptor(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "face models not loaded")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			respondError(w, http.StatusRequestEntityTooLarge, "frame too large")
			return
		}
		log.Debug().Err(err).Msg("reading frame body failed")
		respondError(w, http.StatusBadRequest, "could not read frame")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "empty frame")
		return
	}

	desc, err := h.extractor.GetFaceDescriptor(r.Context(), data)
	switch {
	case errors.Is(err, frame.ErrInvalidFrame), errors.Is(err, frame.ErrEmptyFrame):
		respondError(w, http.StatusBadRequest, "unsupported or corrupt image")
		return
	case errors.Is(err, facerec.ErrModelsNotLoaded):
		respondError(w, http.StatusServiceUnavailable, "face models not loaded")
		return
	case err != nil:
		log.Error().Err(err).Msg("descriptor extraction failed")
		respondError(w, http.StatusInternalServerError, "descriptor extraction failed")
		return
	}

	respondJSON(w, http.StatusOK, DescriptorResponse{Descriptor: desc})
}

// Match looks up the closest labeled descriptor set.
func (h *FacesHandler) Match(w http.ResponseWriter, r *http.Request) {
	if h.matcher == nil {
		respondError(w, http.StatusServiceUnavailable, "no labeled descriptors loaded")
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := h.matcher.CheckDescriptor(req.Descriptor); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	match := h.matcher.FindBestMatch(req.Descriptor)
	log.Debug().Str("label", sanitizeForLog(match.Label)).Float64("distance", match.Distance).Msg("match")
	respondJSON(w, http.StatusOK, match)
}

// Labels lists the labels the matcher knows.
func (h *FacesHandler) Labels(w http.ResponseWriter, r *http.Request) {
	if h.matcher == nil {
		respondError(w, http.StatusServiceUnavailable, "no labeled descriptors loaded")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"labels":    h.matcher.Labels(),
		"threshold": h.matcher.Threshold(),
	})
}
