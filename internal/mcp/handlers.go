package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/templates"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

func (s *Server) handleGeneratePromptSuite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	brief := request.GetString("project_brief", "")
	messages, err := parseMessages(request.GetArguments()["messages"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid messages: %v", err)), nil
	}
	if len(messages) == 0 && strings.TrimSpace(brief) == "" {
		return mcp.NewToolResultError("provide project_brief or messages"), nil
	}
	if s.deps.Pipeline == nil {
		return mcp.NewToolResultError("generation is not configured"), nil
	}

	var result any
	if request.GetString("mode", "full") == "simple" {
		result = s.deps.Pipeline.GenerateSimple(ctx, messages, brief)
	} else {
		result = s.deps.Pipeline.Generate(ctx, messages, brief)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseMessages(raw any) ([]types.ConversationMessage, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var msgs []types.ConversationMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Server) handleRecommendTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	matches := templates.NewScorer(s.deps.Catalog).Rank(templates.SignalsFromText(text))
	if len(matches) == 0 {
		return mcp.NewToolResultText("The template catalog is empty."), nil
	}
	return mcp.NewToolResultText(formatMatches(matches, s.deps.StrongMatch)), nil
}

func formatMatches(matches []types.TemplateMatch, strong int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Top %d template(s):\n", len(matches)))
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n%d. %s (%s) score %d", i+1, m.Template.ID, m.Template.Category, m.Score))
		if templates.IsStrong(m, strong) {
			sb.WriteString(" [strong match]")
		}
		sb.WriteString("\n")
		if m.Template.Description != "" {
			sb.WriteString(m.Template.Description + "\n")
		}
		if m.Reason != "" {
			sb.WriteString("Why: " + m.Reason + "\n")
		}
	}
	return sb.String()
}

func (s *Server) handleSearchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if s.deps.Corpus == nil {
		return mcp.NewToolResultError("the corpus is not configured"), nil
	}

	limit := request.GetInt("limit", 5)
	hits, err := corpus.Search(ctx, s.deps.Corpus, s.deps.Index, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No results found. Import prompts with `promptsuite corpus import`."), nil
	}
	return mcp.NewToolResultText(formatHits(hits)), nil
}

func formatHits(hits []corpus.Hit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(hits)))
	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Title: %s\n", h.Entry.Title))
		if h.Entry.Category != "" {
			sb.WriteString(fmt.Sprintf("Category: %s\n", h.Entry.Category))
		}
		if h.Similarity > 0 {
			sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", h.Similarity*100))
		}
		sb.WriteString("\n")
		sb.WriteString(h.Entry.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *Server) handleSubmitFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}
	if s.deps.Recorder == nil {
		return mcp.NewToolResultError("run history is not configured"), nil
	}

	fb, err := s.deps.Recorder.SubmitFeedback(types.UserFeedback{
		TargetID:    runID,
		Rating:      request.GetInt("rating", 0),
		UsageResult: types.UsageResult(request.GetString("usage_result", string(types.UsageSuccess))),
		FreeText:    request.GetString("comment", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feedback rejected: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Feedback %s accepted for run %s.", fb.ID, runID)), nil
}
