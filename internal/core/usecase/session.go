package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/core/store"
)

// SessionUseCase orchestrates user-driven operations: upload, removal,
// opening a document for viewing, navigation, and session restore. All
// state changes flow through store dispatches; the reactors pick them up.
type SessionUseCase struct {
	store    *store.Store
	remote   ports.InsightService
	manifest ports.ManifestStore
	cache    ports.ContentCache
	pages    ports.PageCounter
	logger   *slog.Logger
}

func NewSessionUseCase(
	st *store.Store,
	remote ports.InsightService,
	manifest ports.ManifestStore,
	cache ports.ContentCache,
	pages ports.PageCounter,
	logger *slog.Logger,
) *SessionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionUseCase{
		store:    st,
		remote:   remote,
		manifest: manifest,
		cache:    cache,
		pages:    pages,
		logger:   logger.With("usecase", "session"),
	}
}

func contentKey(documentID string) string { return "pdf/" + documentID }

// Restore loads the persisted manifest and last selection into a fresh
// session. Local content presence is re-checked against the cache; the
// binary itself is never persisted.
func (uc *SessionUseCase) Restore(ctx context.Context) error {
	docs, err := uc.manifest.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	for i := range docs {
		docs[i].HasLocalContent = uc.cache.Has(ctx, contentKey(docs[i].ID))
	}
	if len(docs) > 0 {
		uc.store.Dispatch(store.AddDocuments{Documents: docs})
	}

	lastSelected, err := uc.manifest.LastSelected(ctx)
	if err != nil {
		uc.logger.Warn("load last selection failed", "error", err)
		return nil
	}
	if lastSelected != "" {
		if _, ok := uc.store.Snapshot().DocumentByID(lastSelected); ok {
			uc.store.Dispatch(store.SelectDocument{ID: lastSelected})
		}
	}
	return nil
}

// Upload sends the document to the backend and registers it in the session
// as pending. The server reuses ids for re-uploaded filenames, so the
// idempotent AddDocuments dispatch replaces rather than duplicates.
func (uc *SessionUseCase) Upload(ctx context.Context, filename string, content []byte) (domain.Document, error) {
	if filename == "" || len(content) == 0 {
		return domain.Document{}, domain.WrapError(domain.ErrInvalidInput, "upload",
			errors.New("filename and content are required"))
	}

	pageCount := 0
	if uc.pages != nil {
		count, err := uc.pages.PageCount(content)
		if err != nil {
			uc.logger.Warn("local page count failed", "filename", filename, "error", err)
		} else {
			pageCount = count
		}
	}

	doc, err := uc.remote.UploadDocument(ctx, filename, content, pageCount)
	if err != nil {
		return domain.Document{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	doc.Processing = domain.ProcessingPending

	if _, err := uc.cache.Put(ctx, contentKey(doc.ID), content); err != nil {
		uc.logger.Warn("cache uploaded content failed", "document", doc.ID, "error", err)
	} else {
		doc.HasLocalContent = true
	}

	uc.store.Dispatch(store.AddDocuments{Documents: []domain.Document{doc}})
	if err := uc.manifest.SaveDocument(ctx, doc); err != nil {
		uc.logger.Warn("persist manifest entry failed", "document", doc.ID, "error", err)
	}
	return doc, nil
}

func (uc *SessionUseCase) Remove(ctx context.Context, id string) error {
	if _, ok := uc.store.Snapshot().DocumentByID(id); !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "remove document", fmt.Errorf("id %s", id))
	}
	if err := uc.remote.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	uc.store.Dispatch(store.RemoveDocument{ID: id})
	if err := uc.manifest.DeleteDocument(ctx, id); err != nil {
		uc.logger.Warn("delete manifest entry failed", "document", id, "error", err)
	}
	return nil
}

// Open selects a document for viewing, fetching its binary content first if
// the local cache has no copy.
func (uc *SessionUseCase) Open(ctx context.Context, id string) error {
	doc, ok := uc.store.Snapshot().DocumentByID(id)
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "open document", fmt.Errorf("id %s", id))
	}

	if !doc.HasLocalContent || !uc.cache.Has(ctx, contentKey(id)) {
		content, err := uc.remote.FetchDocumentContent(ctx, id)
		if err != nil {
			return domain.WrapError(domain.ErrContentUnavailable, "fetch document content", err)
		}
		if _, err := uc.cache.Put(ctx, contentKey(id), content); err != nil {
			return fmt.Errorf("cache document content: %w", err)
		}
		doc.HasLocalContent = true
		uc.store.Dispatch(store.UpdateDocument{Document: doc})
	}

	uc.store.Dispatch(store.SelectDocument{ID: id})
	if err := uc.manifest.SaveLastSelected(ctx, id); err != nil {
		uc.logger.Warn("persist last selection failed", "document", id, "error", err)
	}
	return nil
}

// NavigateTo jumps the session to (document, page) in one atomic step. The
// store's idempotence rule absorbs duplicate jumps.
func (uc *SessionUseCase) NavigateTo(ctx context.Context, documentID string, page int) error {
	doc, ok := uc.store.Snapshot().DocumentByID(documentID)
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "navigate", fmt.Errorf("id %s", documentID))
	}
	if !doc.HasLocalContent {
		if err := uc.Open(ctx, documentID); err != nil {
			return err
		}
	}
	uc.store.Dispatch(store.NavigateTo{DocumentID: documentID, Page: page})
	return nil
}

func (uc *SessionUseCase) Session() domain.Session {
	return uc.store.Snapshot()
}
