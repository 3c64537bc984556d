package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message sent to the text-generation service.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for one generation call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
	// Stage labels the call for logging and usage accounting.
	Stage string
}

// CompletionResponse contains the result of a generation call.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
