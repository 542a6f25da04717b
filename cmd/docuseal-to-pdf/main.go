package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/cookiescgov/docuseal-to-pdf/internal/config"
	"github.com/cookiescgov/docuseal-to-pdf/internal/logging"
	"github.com/cookiescgov/docuseal-to-pdf/internal/mcp"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runner is the part of *mcp.Server the run loops need
type runner interface {
	Run(ctx context.Context) error
}

// runServerMode runs the server until it stops or a shutdown signal arrives
func runServerMode(ctx context.Context, cancel context.CancelFunc, server runner, logger *zap.Logger) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()

		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// runStdioMode runs until the client closes stdin
func runStdioMode(ctx context.Context, _ context.CancelFunc, server runner, logger *zap.Logger) error {
	if err := server.Run(ctx); err != nil {
		logger.Debug("stdio server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsStdioMode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("config", cfg.String()))

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, cfg.OutputDir(), cfg.OutputSuffix,
		logger.Named("pdf"))
	if err != nil {
		logger.Fatal("failed to create PDF service", zap.Error(err))
	}

	server, err := mcp.NewServer(cfg, pdfService, logger.Named("mcp"))
	if err != nil {
		logger.Fatal("failed to create MCP server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cancel, server, logger)
	} else {
		err = runStdioMode(ctx, cancel, server, logger)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docuseal-to-pdf\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
