// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MatchMode defines how a tag filter treats its tag list
type MatchMode string

const (
	MatchAll MatchMode = "all" // image must carry every listed tag
	MatchAny MatchMode = "any" // image must carry at least one listed tag
)

//---------------------

type Image struct {
	ID        uuid.UUID  `json:"id"`
	URL       string     `json:"url"`
	Tags      []string   `json:"tags"`
	Label     string     `json:"label"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

//-------------------

// ImageCreateRequest - raw body of POST /images; exactly one of
// ImageURL/ImageBase64 must be set
type ImageCreateRequest struct {
	ImageURL        string  `json:"image_url"`
	ImageBase64     string  `json:"image_base64"`
	ObjectDetection bool    `json:"object_detection"`
	Label           *string `json:"label"`
}

// ImageSource - resolved image input passed to the recognition provider
type ImageSource struct {
	URL    string
	Base64 string
}

// ListQuery - query-params of GET /images
type ListQuery struct {
	Objects     string `form:"objects"`
	SomeObjects string `form:"some_objects"`
}

// ------------------

var (
	ErrCommon500           error = errors.New("something went wrong. Try again later")                // 500
	ErrIncorrectID         error = errors.New("incorrect image UUID")                                 // 400
	ErrImageNotFound       error = errors.New("specified image UUID doesn't exist")                   // 404
	ErrImageSourceMissing  error = errors.New("expected an image URL or a base64 encoded image")      // 400
	ErrImageSourceConflict error = errors.New("image_url and image_base64 are mutually exclusive")    // 400
	ErrBadBase64           error = errors.New("image_base64 is not valid base64 data")                // 400
	ErrBadImagePayload     error = errors.New("decoded payload is not a supported image")             // 400
	ErrFilterConflict      error = errors.New("cannot specify both objects and some_objects")         // 400
	ErrRecognitionFailed   error = errors.New("object detection provider failed to process an image") // 502
)
