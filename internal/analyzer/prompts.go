package analyzer

import (
	"fmt"

	"github.com/ziadkadry99/promptsuite/internal/llm"
)

const systemPrompt = `You are a senior product consultant. Read the project conversation and brief and return a structured JSON profile of the project. Be precise. Do not invent requirements that the user did not express.`

const extractionPromptTemplate = `Analyze the following project description and conversation and return a JSON object with exactly these fields:

{
  "project_type": "short name such as e-commerce platform, productivity tool, mobile app",
  "primary_domain": "one of business|tech|design|management",
  "target_users": "who will use the product",
  "core_value": "one sentence describing the main value delivered",
  "main_challenges": ["the key difficulties the project must solve"],
  "technical_keywords": ["technologies or technical concepts mentioned"],
  "business_keywords": ["business concepts mentioned"],
  "completeness_score": 0,
  "clarity_score": 0,
  "innovation_score": 0
}

Scores are integers from 0 to 100. Return only the JSON object.

Project brief:
%s

Conversation:
%s`

// buildMessages constructs the extraction request.
func buildMessages(brief, conversation string) []llm.Message {
	if brief == "" {
		brief = "(none)"
	}
	if conversation == "" {
		conversation = "(no messages)"
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(extractionPromptTemplate, brief, conversation)},
	}
}
