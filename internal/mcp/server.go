package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Config holds MCP server configuration.
type Config struct {
	RulesPath string
	CacheSize int
	Version   string
	Logger    *slog.Logger
}

// Server wraps the MCP SDK server with the riskgate classifier.
type Server struct {
	mcpServer *mcpsdk.Server
	holder    *classifier.Holder
	log       *slog.Logger
}

// New creates an MCP server with the rule base loaded and tools registered.
func New(cfg Config) (*Server, error) {
	rb, err := rulebase.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	e, err := classifier.New(rb, classifier.WithCache(cfg.CacheSize))
	if err != nil {
		return nil, err
	}
	return NewWithHolder(classifier.NewHolder(e), cfg), nil
}

// NewWithHolder creates an MCP server sharing an existing engine holder,
// so that reloads done elsewhere are visible to MCP tools.
func NewWithHolder(h *classifier.Holder, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{holder: h, log: log}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "riskgate",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all riskgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "riskgate_classify",
		Description: "Classify a project profile as low, medium or high risk. High risk includes the full mitigation catalogue. Invalid input returns an error result naming the outcome.",
	}, s.handleClassify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "riskgate_catalogue",
		Description: "List the mitigation catalogue and the version of the active rule base.",
	}, s.handleCatalogue)
}
