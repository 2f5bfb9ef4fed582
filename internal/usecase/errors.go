package usecase

import "errors"

var (
	// ErrMissingTopic is returned when a topic run is started without a subject.
	ErrMissingTopic = errors.New("topic is required")
	// ErrEmptyCompletion is returned when an agent answers with blank text.
	ErrEmptyCompletion = errors.New("agent returned empty text")
	// ErrMalformedScript wraps every failure to decode agent output into scripts.
	ErrMalformedScript = errors.New("malformed script")
)
