package store

import (
	"testing"

	"github.com/omarkov/insight-session/internal/core/domain"
)

func doc(id string) domain.Document {
	return domain.Document{ID: id, DisplayName: id + ".pdf", Processing: domain.ProcessingCompleted}
}

func TestAddDocumentsDeduplicatesByID(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a"), doc("b")}})

	updated := doc("a")
	updated.PageCount = 42
	st.Dispatch(AddDocuments{Documents: []domain.Document{updated}})

	snap := st.Snapshot()
	if len(snap.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(snap.Documents))
	}
	if snap.Documents[0].ID != "a" || snap.Documents[0].PageCount != 42 {
		t.Errorf("re-added document should replace in place, got %+v", snap.Documents[0])
	}
}

func TestSelectDocumentResetsPageAndBumpsEpoch(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})
	st.Dispatch(SelectDocument{ID: "a"})
	st.Dispatch(SetPage{Page: 7})
	st.Dispatch(SetSelectedText{Text: "some selection"})

	before := st.Snapshot()
	st.Dispatch(SelectDocument{ID: "a"})
	snap := st.Snapshot()

	if snap.CurrentPage != 1 {
		t.Errorf("expected page reset to 1, got %d", snap.CurrentPage)
	}
	if snap.SelectedText != "" {
		t.Errorf("expected selected text cleared, got %q", snap.SelectedText)
	}
	if snap.NavigationEpoch != before.NavigationEpoch+1 {
		t.Errorf("expected epoch %d, got %d", before.NavigationEpoch+1, snap.NavigationEpoch)
	}
}

func TestSelectUnknownDocumentClearsSelection(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})
	st.Dispatch(SelectDocument{ID: "a"})
	st.Dispatch(SelectDocument{ID: "ghost"})

	snap := st.Snapshot()
	if snap.SelectedDocumentID != "" {
		t.Errorf("expected cleared selection, got %q", snap.SelectedDocumentID)
	}
}

func TestNavigateToIsIdempotentAtCurrentLocation(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})
	st.Dispatch(NavigateTo{DocumentID: "a", Page: 5})

	before := st.Snapshot()
	st.Dispatch(NavigateTo{DocumentID: "a", Page: 5})
	snap := st.Snapshot()

	if snap.NavigationEpoch != before.NavigationEpoch {
		t.Errorf("duplicate navigation must not bump the epoch: %d -> %d",
			before.NavigationEpoch, snap.NavigationEpoch)
	}
}

func TestNavigateToClampsPageAndIgnoresUnknownDocument(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})

	st.Dispatch(NavigateTo{DocumentID: "a", Page: -3})
	if page := st.Snapshot().CurrentPage; page != 1 {
		t.Errorf("expected page clamped to 1, got %d", page)
	}

	before := st.Snapshot()
	st.Dispatch(NavigateTo{DocumentID: "ghost", Page: 2})
	snap := st.Snapshot()
	if snap.SelectedDocumentID != before.SelectedDocumentID || snap.NavigationEpoch != before.NavigationEpoch {
		t.Errorf("navigation to unknown document must be a no-op")
	}
}

func TestNavigateToAnotherDocumentClearsSelectedText(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a"), doc("b")}})
	st.Dispatch(SelectDocument{ID: "a"})
	st.Dispatch(SetSelectedText{Text: "quoted passage"})

	st.Dispatch(NavigateTo{DocumentID: "b", Page: 2})
	if text := st.Snapshot().SelectedText; text != "" {
		t.Errorf("navigating to another document must clear selected text, got %q", text)
	}

	st.Dispatch(SetSelectedText{Text: "fresh selection"})
	st.Dispatch(NavigateTo{DocumentID: "b", Page: 3})
	if text := st.Snapshot().SelectedText; text != "fresh selection" {
		t.Errorf("navigating within the same document must keep selected text, got %q", text)
	}
}

func TestRemoveDocumentClearsDanglingSelection(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a"), doc("b")}})
	st.Dispatch(SelectDocument{ID: "a"})
	st.Dispatch(RemoveDocument{ID: "a"})

	snap := st.Snapshot()
	if snap.SelectedDocumentID != "" {
		t.Errorf("expected selection cleared after removal, got %q", snap.SelectedDocumentID)
	}
	if len(snap.Documents) != 1 || snap.Documents[0].ID != "b" {
		t.Errorf("unexpected documents after removal: %+v", snap.Documents)
	}
	if _, ok := snap.Processing["a"]; ok {
		t.Errorf("processing entry for removed document should be gone")
	}
}

func TestReplaceCardsLeavesArtifactsUntouched(t *testing.T) {
	st := New(nil)
	st.Dispatch(ReplaceCards{
		Cards:          []domain.Card{{ID: "c1", Heading: "First"}},
		JobDescription: "data engineer",
	})
	st.Dispatch(PutDetail{CardID: "c1", Detail: domain.Detail{KeyInsights: []string{"x"}}})

	st.Dispatch(ReplaceCards{Cards: nil, JobDescription: "data engineer"})

	snap := st.Snapshot()
	if len(snap.Cards) != 0 {
		t.Errorf("expected empty card set, got %d", len(snap.Cards))
	}
	artifact, ok := snap.Artifacts["c1"]
	if !ok || artifact.Detail == nil {
		t.Errorf("artifacts must survive a card set replacement")
	}
}

func TestPutDetailAndAudioMergePerCard(t *testing.T) {
	st := New(nil)
	st.Dispatch(PutDetail{CardID: "c1", Detail: domain.Detail{KeyInsights: []string{"k"}}})
	st.Dispatch(PutAudio{CardID: "c1", Audio: domain.Audio{Location: "/audio/c1.mp3"}})

	artifact := st.Snapshot().Artifacts["c1"]
	if artifact.Detail == nil || artifact.Audio == nil {
		t.Fatalf("expected both detail and audio cached, got %+v", artifact)
	}
	if artifact.Audio.Location != "/audio/c1.mp3" {
		t.Errorf("unexpected audio location %q", artifact.Audio.Location)
	}
}

func TestSubscribeCoalescesBursts(t *testing.T) {
	st := New(nil)
	notify, cancel := st.Subscribe()
	defer cancel()

	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})
	st.Dispatch(NavigateTo{DocumentID: "a", Page: 2})
	st.Dispatch(NavigateTo{DocumentID: "a", Page: 9})

	<-notify
	select {
	case <-notify:
		t.Fatalf("burst of dispatches must coalesce into one pending wake-up")
	default:
	}

	if page := st.Snapshot().CurrentPage; page != 9 {
		t.Errorf("snapshot after wake-up must carry the latest state, got page %d", page)
	}
}

func TestSnapshotIsIsolatedFromStore(t *testing.T) {
	st := New(nil)
	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})

	snap := st.Snapshot()
	snap.Documents[0].DisplayName = "mutated"
	snap.Processing["a"] = domain.ProcessingError

	fresh := st.Snapshot()
	if fresh.Documents[0].DisplayName == "mutated" {
		t.Errorf("snapshot mutation leaked into the store")
	}
	if fresh.Processing["a"] == domain.ProcessingError {
		t.Errorf("snapshot map mutation leaked into the store")
	}
}

func TestSnapshotArtifactsAreDeepCopied(t *testing.T) {
	st := New(nil)
	st.Dispatch(PutDetail{CardID: "c1", Detail: domain.Detail{KeyInsights: []string{"original"}}})
	st.Dispatch(PutAudio{CardID: "c1", Audio: domain.Audio{Location: "/audio/c1.mp3"}})

	snap := st.Snapshot()
	snap.Artifacts["c1"].Detail.KeyInsights[0] = "tampered"
	snap.Artifacts["c1"].Audio.Location = "/elsewhere.mp3"

	fresh := st.Snapshot().Artifacts["c1"]
	if fresh.Detail.KeyInsights[0] != "original" {
		t.Errorf("detail mutation leaked into the store: %q", fresh.Detail.KeyInsights[0])
	}
	if fresh.Audio.Location != "/audio/c1.mp3" {
		t.Errorf("audio mutation leaked into the store: %q", fresh.Audio.Location)
	}
}

func TestObserverSeesActionNameAndState(t *testing.T) {
	st := New(nil)
	var gotAction string
	var gotDocs int
	st.SetObserver(func(action Action, next domain.Session) {
		gotAction = Name(action)
		gotDocs = len(next.Documents)
	})

	st.Dispatch(AddDocuments{Documents: []domain.Document{doc("a")}})
	if gotAction != "add_documents" {
		t.Errorf("expected action name add_documents, got %q", gotAction)
	}
	if gotDocs != 1 {
		t.Errorf("observer should see post-dispatch state, got %d docs", gotDocs)
	}
}
