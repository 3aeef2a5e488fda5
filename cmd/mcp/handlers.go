package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/omarkov/insight-session/internal/bootstrap"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return textResult(fmt.Sprintf("Error: "+format, args...))
}

func handleLogin(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, err := request.RequireString("email")
		if err != nil || email == "" {
			return errorResult("email parameter is required"), nil
		}
		password, err := request.RequireString("password")
		if err != nil || password == "" {
			return errorResult("password parameter is required"), nil
		}
		if err := app.Remote.Login(ctx, email, password); err != nil {
			return errorResult("login failed: %v", err), nil
		}
		identity, err := app.Remote.Me(ctx)
		if err != nil || identity == "" {
			identity = email
		}
		if err := app.Credentials.SaveIdentity(ctx, identity); err != nil {
			return errorResult("store identity: %v", err), nil
		}
		return textResult("Logged in as " + identity), nil
	}
}

func handleListDocuments(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := app.SessionUC.Session()
		return textResult(formatDocuments(snap)), nil
	}
}

func handleUploadDocument(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return errorResult("path parameter is required"), nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errorResult("read file: %v", err), nil
		}
		doc, err := app.SessionUC.Upload(ctx, filepath.Base(path), content)
		if err != nil {
			return errorResult("upload failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Uploaded %s as document %s (%d pages, processing %s)",
			doc.DisplayName, doc.ID, doc.PageCount, doc.Processing)), nil
	}
}

func handleRemoveDocument(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("document_id")
		if err != nil || id == "" {
			return errorResult("document_id parameter is required"), nil
		}
		if err := app.SessionUC.Remove(ctx, id); err != nil {
			return errorResult("remove failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Removed document %s", id)), nil
	}
}

func handleOpenDocument(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("document_id")
		if err != nil || id == "" {
			return errorResult("document_id parameter is required"), nil
		}
		if err := app.SessionUC.Open(ctx, id); err != nil {
			return errorResult("open failed: %v", err), nil
		}
		snap := app.SessionUC.Session()
		doc, _ := snap.SelectedDocument()
		return textResult(fmt.Sprintf("Opened %s at page %d", doc.DisplayName, snap.CurrentPage)), nil
	}
}

func handleGoToPage(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("document_id")
		if err != nil || id == "" {
			return errorResult("document_id parameter is required"), nil
		}
		page := request.GetInt("page", 0)
		if page < 1 {
			return errorResult("page must be a positive number"), nil
		}
		if err := app.SessionUC.NavigateTo(ctx, id, page); err != nil {
			return errorResult("navigation failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Navigated to page %d of document %s", page, id)), nil
	}
}

func handleGenerateInsights(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := request.GetStringSlice("document_ids", nil)
		job := request.GetString("job_description", "")
		cards, err := app.InsightsUC.GenerateInsights(ctx, ids, job)
		if err != nil {
			return errorResult("insight generation failed: %v", err), nil
		}
		return textResult(formatCards(cards)), nil
	}
}

func handleListCards(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := app.SessionUC.Session()
		return textResult(formatCards(snap.Cards)), nil
	}
}

func handleCardDetail(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := request.RequireString("card_id")
		if err != nil || cardID == "" {
			return errorResult("card_id parameter is required"), nil
		}
		detail, err := app.Artifacts.EnsureDetail(ctx, cardID)
		if err != nil {
			return errorResult("detail generation failed: %v", err), nil
		}
		return textResult(formatDetail(cardID, detail)), nil
	}
}

func handleCardAudio(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := request.RequireString("card_id")
		if err != nil || cardID == "" {
			return errorResult("card_id parameter is required"), nil
		}
		path, err := app.Playback.Download(ctx, cardID)
		if err != nil {
			return errorResult("audio generation failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Audio for card %s saved to %s", cardID, path)), nil
	}
}

func handlePlayCardAudio(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := request.RequireString("card_id")
		if err != nil || cardID == "" {
			return errorResult("card_id parameter is required"), nil
		}
		if err := app.Playback.Play(ctx, cardID); err != nil {
			return errorResult("playback failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Card %s audio: %s", cardID, app.Playback.State(cardID))), nil
	}
}

func handlePauseCardAudio(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := request.RequireString("card_id")
		if err != nil || cardID == "" {
			return errorResult("card_id parameter is required"), nil
		}
		if err := app.Playback.Pause(ctx, cardID); err != nil {
			return errorResult("pause failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Card %s audio: %s", cardID, app.Playback.State(cardID))), nil
	}
}

func handleRestartCardAudio(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := request.RequireString("card_id")
		if err != nil || cardID == "" {
			return errorResult("card_id parameter is required"), nil
		}
		if err := app.Playback.Restart(ctx, cardID); err != nil {
			return errorResult("restart failed: %v", err), nil
		}
		return textResult(fmt.Sprintf("Card %s audio: %s", cardID, app.Playback.State(cardID))), nil
	}
}
