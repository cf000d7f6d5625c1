package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/riskgate/internal/server"
)

var (
	servePort      int
	serveCacheSize int
	serveAuditLog  string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
	serveCmd.Flags().IntVar(&serveCacheSize, "cache-size", 4096, "Number of classification results to cache (0 disables)")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Append every classification to this hash-chained JSONL decision log")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC risk classification server",
	Long: "Runs riskgate as a classification service over gRPC (riskgate.v1.RiskService).\n" +
		"When --rules names a file it is hot-reloaded on change; a rule base that\n" +
		"fails to load on reload is logged and the previous one stays active.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(server.Config{
		Port:      servePort,
		RulesPath: rulesPath,
		CacheSize: serveCacheSize,
		AuditPath: serveAuditLog,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if rulesPath != "" {
		reloader, err := server.NewReloader(srv, []string{rulesPath})
		if err != nil {
			slog.Warn("hot-reload disabled", "error", err)
		} else {
			slog.Info("hot-reload enabled", "paths", reloader.Paths())
			g.Go(func() error { return reloader.Run(ctx) })
		}
	}

	g.Go(srv.Serve)
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down risk server")
		srv.GracefulStop()
		return nil
	})

	return g.Wait()
}
