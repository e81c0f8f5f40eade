package errors

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ValidateSessionID validates a viewer session identifier.
// Session IDs are random UUIDs; anything else is rejected before it
// reaches a session store or a cache key.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}

// ValidateFormats checks that every requested output format is one of
// allowed. Formats are compared case-sensitively after trimming spaces.
func ValidateFormats(formats, allowed []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "no output format requested")
	}
	for _, f := range formats {
		f = strings.TrimSpace(f)
		if !slices.Contains(allowed, f) {
			return New(ErrCodeInvalidFormat, "unknown format %q (valid: %s)", f, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// ValidateSurfaceSize validates the dimensions of a drawing surface in CSS
// pixels together with the device pixel ratio.
//
// Validation rules:
//   - Width and height must be positive and finite
//   - Neither dimension may exceed 16384 device pixels
//   - Pixel ratio must be in (0, 8]
func ValidateSurfaceSize(width, height, pixelRatio float64) error {
	const maxDevice = 16384
	for _, v := range []float64{width, height, pixelRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "surface size must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "surface size must be positive, got %gx%g", width, height)
	}
	if pixelRatio <= 0 || pixelRatio > 8 {
		return New(ErrCodeInvalidInput, "pixel ratio must be in (0, 8], got %g", pixelRatio)
	}
	if width*pixelRatio > maxDevice || height*pixelRatio > maxDevice {
		return New(ErrCodeInvalidInput, "surface too large (max %d device pixels per side)", maxDevice)
	}
	return nil
}
