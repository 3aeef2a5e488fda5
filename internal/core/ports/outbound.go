package ports

import (
	"context"
	"time"

	"github.com/omarkov/insight-session/internal/core/domain"
)

// InsightService is the remote request/response API: document CRUD, insight
// generation, audio synthesis, per-page section content.
type InsightService interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	UploadDocument(ctx context.Context, filename string, content []byte, pageCount int) (domain.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	FetchDocumentContent(ctx context.Context, id string) ([]byte, error)
	SectionContent(ctx context.Context, documentID string, page int) ([]domain.SectionContent, error)
	GenerateInsights(ctx context.Context, documentIDs []string, jobDescription string) ([]domain.Card, error)
	GenerateDetail(ctx context.Context, req DetailRequest) (domain.Detail, error)
	GenerateJobDetail(ctx context.Context, jobDescription string) (domain.Detail, error)
	GenerateAudio(ctx context.Context, req AudioRequest) (domain.Audio, *domain.Detail, error)
	Health(ctx context.Context) error
}

type DetailRequest struct {
	Heading      string
	Snippet      string
	DocumentName string
	PageNumber   int
}

type AudioRequest struct {
	CardID       string
	Heading      string
	Content      string
	Detail       *domain.Detail
	DocumentName string
	PageNumber   int
}

// Renderer is the entry point of the opaque document-rendering component.
// Availability is probed before use; the component may load asynchronously.
type Renderer interface {
	Available(ctx context.Context) error
	Preview(ctx context.Context, contentPath string, meta DocumentMeta) (RendererInstance, error)
}

type DocumentMeta struct {
	ID          string
	DisplayName string
}

// RendererInstance is one live viewer bound to a single document. It has no
// cancellation primitive: callers emulate cancellation by ignoring stale
// results. OnSelectionEnd offers no unregistration; late callbacks must be
// guarded by the caller.
type RendererInstance interface {
	GotoPage(ctx context.Context, page int) error
	Search(ctx context.Context, text string) (SearchHandle, error)
	SelectedContent(ctx context.Context) (string, error)
	OnSelectionEnd(handler func())
	Destroy(ctx context.Context) error
}

// SearchHandle clears one search's highlight results.
type SearchHandle interface {
	Clear(ctx context.Context) error
}

// AudioOutput plays one audio resource at a time. OnEnded registers the
// handler invoked when the current resource plays to its natural end; like
// OnSelectionEnd there is no unregistration.
type AudioOutput interface {
	Play(ctx context.Context, location string) error
	Pause(ctx context.Context) error
	Restart(ctx context.Context) error
	Stop(ctx context.Context) error
	OnEnded(handler func())
}

// ManifestStore persists the minimal client-side document manifest and the
// last-selected document id. Binary content is never persisted here.
type ManifestStore interface {
	SaveDocument(ctx context.Context, doc domain.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	SaveLastSelected(ctx context.Context, id string) error
	LastSelected(ctx context.Context) (string, error)
}

// CredentialStore holds the bearer credential and user identity.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ContentCache stores fetched document binaries and downloaded audio on
// local disk.
type ContentCache interface {
	Put(ctx context.Context, key string, data []byte) (path string, err error)
	Path(ctx context.Context, key string) (string, error)
	Has(ctx context.Context, key string) bool
}

// Notifier surfaces transient, user-facing failures that carry no state.
type Notifier interface {
	Notify(level NotifyLevel, message string)
}

type NotifyLevel string

const (
	NotifyInfo  NotifyLevel = "info"
	NotifyWarn  NotifyLevel = "warn"
	NotifyError NotifyLevel = "error"
)

// PageCounter reports a PDF's page count from raw bytes.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// Clock abstracts timer scheduling so reactors can be tested without
// real delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
