package ai

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("ai: api key is empty")
	ErrEmptyContent  = errors.New("ai: empty content")
)

// Request is the vendor-neutral generation call.
type Request struct {
	Instructions string
	RequireJSON  bool
}

// TextGenerator is an external text-generation capability.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}
