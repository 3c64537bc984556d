package llm

import "context"

// OfflineProvider fails every call with ErrOffline. The pipeline then
// produces its deterministic fallback output without any network access.
type OfflineProvider struct{}

func (OfflineProvider) Name() string { return "offline" }

func (OfflineProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return nil, ErrOffline
}
