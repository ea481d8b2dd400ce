package engine

import "errors"

var (
	ErrNoTranscript    = errors.New("no transcript available")
	ErrChannelNotFound = errors.New("channel not found")
	ErrNoVideos        = errors.New("no recent videos")
	ErrLLMDisabled     = errors.New("llm not configured")
)
