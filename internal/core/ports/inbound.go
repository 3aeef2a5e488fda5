package ports

import (
	"context"

	"github.com/omarkov/insight-session/internal/core/domain"
)

// SessionService is the inbound contract for user-driven session operations,
// consumed by the command surfaces (daemon, MCP tools).
type SessionService interface {
	Restore(ctx context.Context) error
	Upload(ctx context.Context, filename string, content []byte) (domain.Document, error)
	Remove(ctx context.Context, id string) error
	Open(ctx context.Context, id string) error
	NavigateTo(ctx context.Context, documentID string, page int) error
	Session() domain.Session
}

// InsightGenerator is the inbound contract for batch insight generation.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, documentIDs []string, jobDescription string) ([]domain.Card, error)
}

// ArtifactService is the inbound contract for on-demand artifact generation
// and playback control.
type ArtifactService interface {
	EnsureDetail(ctx context.Context, cardID string) (domain.Detail, error)
	EnsureAudio(ctx context.Context, cardID string) (domain.Audio, error)
}
