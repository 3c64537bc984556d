package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/promptsuite/internal/corpus"
	"github.com/ziadkadry99/promptsuite/internal/history"
	"github.com/ziadkadry99/promptsuite/internal/pipeline"
	"github.com/ziadkadry99/promptsuite/internal/templates"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the services exposed as tools. Corpus and Recorder are optional;
// their tools report an error when unset.
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Catalog     *templates.Catalog
	StrongMatch int
	Corpus      *corpus.Store
	Index       *corpus.Index
	Recorder    *history.Recorder
}

// Server wraps an MCP server that exposes prompt generation tools.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = templates.DefaultCatalog()
	}
	if deps.StrongMatch <= 0 {
		deps.StrongMatch = templates.DefaultStrongMatch
	}
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"promptsuite",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(generatePromptSuiteTool, s.handleGeneratePromptSuite)
	s.mcp.AddTool(recommendTemplatesTool, s.handleRecommendTemplates)
	s.mcp.AddTool(searchCorpusTool, s.handleSearchCorpus)
	s.mcp.AddTool(submitFeedbackTool, s.handleSubmitFeedback)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
