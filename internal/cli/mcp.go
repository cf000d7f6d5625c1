package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	riskmcp "github.com/ppiankov/riskgate/internal/mcp"
)

var mcpCacheSize int

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntVar(&mcpCacheSize, "cache-size", 256, "Number of classification results to cache (0 disables)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs riskgate as an MCP (Model Context Protocol) server over stdio.\nExposes tools: riskgate_classify, riskgate_catalogue.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := riskmcp.New(riskmcp.Config{
		RulesPath: rulesPath,
		CacheSize: mcpCacheSize,
		Version:   version,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("riskgate MCP server running on stdio")
	return srv.Run(ctx)
}
