package transport

import (
	"errors"

	"github.com/QuietRecursion/ImageTagger/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrRecognitionFailed):
		return 502
	case errors.Is(err, model.ErrImageNotFound):
		return 404
	case errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrImageSourceMissing),
		errors.Is(err, model.ErrImageSourceConflict),
		errors.Is(err, model.ErrBadBase64),
		errors.Is(err, model.ErrBadImagePayload),
		errors.Is(err, model.ErrFilterConflict):
		return 400
	default:
		return 500
	}
}
