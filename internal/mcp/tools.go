package mcp

import "github.com/mark3labs/mcp-go/mcp"

var generatePromptSuiteTool = mcp.NewTool("generate_prompt_suite",
	mcp.WithDescription("Turn a project conversation into four expert prompts and four generated documents (requirements, technical architecture, design, project plan)."),
	mcp.WithString("project_brief",
		mcp.Description("Free-text description of the project"),
	),
	mcp.WithArray("messages",
		mcp.Description("Conversation turns, each {\"role\": \"user\"|\"assistant\", \"content\": \"...\"}"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"role":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
		}),
	),
	mcp.WithString("mode",
		mcp.Description("full runs the expert pipeline; simple fills the best catalog template when it is a strong match"),
		mcp.Enum("full", "simple"),
	),
)

var recommendTemplatesTool = mcp.NewTool("recommend_templates",
	mcp.WithDescription("Rank the prompt template catalog against a project description."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Project description or conversation text"),
	),
)

var searchCorpusTool = mcp.NewTool("search_corpus",
	mcp.WithDescription("Search the corpus of harvested example prompts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)

var submitFeedbackTool = mcp.NewTool("submit_feedback",
	mcp.WithDescription("Rate a generated suite. Feedback is recorded asynchronously and adjusts the expert pattern used for the run."),
	mcp.WithString("run_id",
		mcp.Required(),
		mcp.Description("run_id returned by generate_prompt_suite"),
	),
	mcp.WithNumber("rating",
		mcp.Required(),
		mcp.Description("Rating from 1 to 5"),
	),
	mcp.WithString("usage_result",
		mcp.Description("How the suite worked out"),
		mcp.Enum("success", "partial", "failed"),
	),
	mcp.WithString("comment",
		mcp.Description("Free-text feedback"),
	),
)
