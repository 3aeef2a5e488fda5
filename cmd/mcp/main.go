package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/omarkov/insight-session/internal/bootstrap"
	"github.com/omarkov/insight-session/internal/config"
	"github.com/omarkov/insight-session/internal/observability/logging"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol stream; all logging goes to stderr.
	logger := logging.NewStderrLogger("mcp", cfg.LogLevel)

	app, err := bootstrap.New(cfg, logger, bootstrap.Options{Service: "mcp", WithRenderer: true})
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.SessionUC.Restore(ctx); err != nil {
		logger.Warn("session restore failed", "error", err)
	}
	go app.Reconciler.Run(ctx)
	// The viewer reactor follows open/navigate tools and hosts audio
	// playback; the browser tab launches lazily on first use.
	go app.Viewer.Run(ctx)

	mcpServer := server.NewMCPServer(
		"insight-session",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(loginTool(), handleLogin(app))
	mcpServer.AddTool(listDocumentsTool(), handleListDocuments(app))
	mcpServer.AddTool(uploadDocumentTool(), handleUploadDocument(app))
	mcpServer.AddTool(removeDocumentTool(), handleRemoveDocument(app))
	mcpServer.AddTool(openDocumentTool(), handleOpenDocument(app))
	mcpServer.AddTool(goToPageTool(), handleGoToPage(app))
	mcpServer.AddTool(generateInsightsTool(), handleGenerateInsights(app))
	mcpServer.AddTool(listCardsTool(), handleListCards(app))
	mcpServer.AddTool(cardDetailTool(), handleCardDetail(app))
	mcpServer.AddTool(cardAudioTool(), handleCardAudio(app))
	mcpServer.AddTool(playCardAudioTool(), handlePlayCardAudio(app))
	mcpServer.AddTool(pauseCardAudioTool(), handlePauseCardAudio(app))
	mcpServer.AddTool(restartCardAudioTool(), handleRestartCardAudio(app))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
