// Package llmtest provides scripted providers for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/promptsuite/internal/llm"
)

// Func answers one request.
type Func func(req llm.CompletionRequest) (string, error)

// Provider records calls and answers them with Respond. Safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	Calls   []llm.CompletionRequest
	Respond Func
}

// New returns a Provider answering every request with respond.
func New(respond Func) *Provider {
	return &Provider{Respond: respond}
}

// Static returns a Provider that answers every request with content.
func Static(content string) *Provider {
	return New(func(llm.CompletionRequest) (string, error) { return content, nil })
}

// Failing returns a Provider that fails every request with err.
func Failing(err error) *Provider {
	return New(func(llm.CompletionRequest) (string, error) { return "", err })
}

// ByStage routes requests on CompletionRequest.Stage. Stages without an
// entry fail with llm.ErrOffline.
func ByStage(stages map[string]Func) *Provider {
	return New(func(req llm.CompletionRequest) (string, error) {
		if f, ok := stages[req.Stage]; ok {
			return f(req)
		}
		return "", llm.ErrOffline
	})
}

func (p *Provider) Name() string { return "scripted" }

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, req)
	respond := p.Respond
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := respond(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content, Model: "scripted", FinishReason: "stop"}, nil
}

// CallCount returns the number of calls made.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// StageCount returns the number of calls made for stage.
func (p *Provider) StageCount(stage string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c.Stage == stage {
			n++
		}
	}
	return n
}
