package llm

import "sync"

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing.
var priceTable = map[string]modelPricing{
	"gpt-4o":       {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":  {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4.1":      {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"gpt-4.1-mini": {InputPerMillion: 0.40, OutputPerMillion: 1.60},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000.0*pricing.InputPerMillion +
		float64(outputTokens)/1_000_000.0*pricing.OutputPerMillion
}

// Usage summarises the calls made during one run.
type Usage struct {
	Calls            int     `json:"calls"`
	FailedCalls      int     `json:"failed_calls"`
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// UsageTracker accumulates Usage. Safe for concurrent use.
type UsageTracker struct {
	mu    sync.Mutex
	usage Usage
}

// Record adds one successful call.
func (t *UsageTracker) Record(model string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Calls++
	t.usage.InputTokens += inputTokens
	t.usage.OutputTokens += outputTokens
	t.usage.EstimatedCostUSD += EstimateCost(model, inputTokens, outputTokens)
}

func (t *UsageTracker) recordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Calls++
	t.usage.FailedCalls++
}

// Snapshot returns the accumulated usage.
func (t *UsageTracker) Snapshot() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// EstimateTokens returns a rough token count (about four characters per token).
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
