package store

import "github.com/omarkov/insight-session/internal/core/domain"

// Action is a request to move the session to its next state. Transitions are
// pure: consumers must react to resulting snapshots, never to which action
// fired, so replays and out-of-order delivery stay safe.
type Action interface {
	actionName() string
}

// AddDocuments appends documents, deduplicating by id. A duplicate id replaces
// the existing entry in place (the server reuses ids for re-uploads), so
// insertion order of first occurrence is preserved.
type AddDocuments struct {
	Documents []domain.Document
}

// RemoveDocument drops a document. A selection pointing at it is cleared.
type RemoveDocument struct {
	ID string
}

// UpdateDocument replaces the stored document with the same id. Unknown ids
// are ignored.
type UpdateDocument struct {
	Document domain.Document
}

// SelectDocument resets the current page to 1 and advances the navigation
// epoch. Selecting an unknown id clears the selection.
type SelectDocument struct {
	ID string
}

// SetPage records the page the renderer currently displays.
type SetPage struct {
	Page int
}

// SetTotalPages records the renderer-reported page count.
type SetTotalPages struct {
	Total int
}

// NavigateTo atomically selects a document, sets the page, and advances the
// navigation epoch. It is the sole entry point for "jump to this result".
// Navigating to the already-current (document, page) is a no-op.
type NavigateTo struct {
	DocumentID string
	Page       int
}

// SetNavigating marks whether a renderer navigation call is outstanding.
type SetNavigating struct {
	Active bool
}

// ReplaceCards swaps the card set wholesale and records the job description
// the batch was generated for. Artifacts are left untouched: a new batch
// carries fresh card ids, so stale entries are unreachable.
type ReplaceCards struct {
	Cards          []domain.Card
	JobDescription string
}

// PutDetail caches a generated insight detail for a card.
type PutDetail struct {
	CardID string
	Detail domain.Detail
}

// PutAudio caches a generated audio reference for a card.
type PutAudio struct {
	CardID string
	Audio  domain.Audio
}

// PatchProcessing reconciles one document's processing state against the
// remote source of truth.
type PatchProcessing struct {
	DocumentID string
	State      domain.ProcessingState
}

// SetSelectedText records text selected inside the renderer.
type SetSelectedText struct {
	Text string
}

func (AddDocuments) actionName() string    { return "add_documents" }
func (RemoveDocument) actionName() string  { return "remove_document" }
func (UpdateDocument) actionName() string  { return "update_document" }
func (SelectDocument) actionName() string  { return "select_document" }
func (SetPage) actionName() string         { return "set_page" }
func (SetTotalPages) actionName() string   { return "set_total_pages" }
func (NavigateTo) actionName() string      { return "navigate_to" }
func (SetNavigating) actionName() string   { return "set_navigating" }
func (ReplaceCards) actionName() string    { return "replace_cards" }
func (PutDetail) actionName() string       { return "put_detail" }
func (PutAudio) actionName() string        { return "put_audio" }
func (PatchProcessing) actionName() string { return "patch_processing" }
func (SetSelectedText) actionName() string { return "set_selected_text" }

// Name reports the action's stable name, used for logging and metrics.
func Name(a Action) string {
	if a == nil {
		return "unknown"
	}
	return a.actionName()
}
