package llm

import (
	"context"
	"errors"
)

// Provider is the text-generation collaborator. Implementations may be
// slow, may fail, and may return malformed structured payloads; callers
// apply their own parse and fallback discipline.
type Provider interface {
	// Complete sends a generation request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// ErrOffline is returned by the offline provider for every call.
var ErrOffline = errors.New("text generation is offline")

// PermanentError marks a failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err should not be retried.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p) || errors.Is(err, ErrOffline)
}

// Generate is a convenience wrapper returning only the text content. A nil
// provider fails with ErrOffline.
func Generate(ctx context.Context, p Provider, req CompletionRequest) (string, error) {
	if p == nil {
		return "", ErrOffline
	}
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
