package store

import "github.com/omarkov/insight-session/internal/core/domain"

// reduce maps (state, action) to the next state. It never suspends and has no
// side effects; Dispatch owns serialization.
func reduce(s domain.Session, action Action) domain.Session {
	switch a := action.(type) {
	case AddDocuments:
		return reduceAddDocuments(s, a)
	case RemoveDocument:
		return reduceRemoveDocument(s, a)
	case UpdateDocument:
		return reduceUpdateDocument(s, a)
	case SelectDocument:
		return reduceSelectDocument(s, a)
	case SetPage:
		if a.Page >= 1 {
			s.CurrentPage = a.Page
		}
		return s
	case SetTotalPages:
		if a.Total >= 1 {
			s.TotalPages = a.Total
		}
		return s
	case NavigateTo:
		return reduceNavigateTo(s, a)
	case SetNavigating:
		s.IsNavigating = a.Active
		return s
	case ReplaceCards:
		s.Cards = append([]domain.Card(nil), a.Cards...)
		s.JobDescription = a.JobDescription
		return s
	case PutDetail:
		return reducePutDetail(s, a)
	case PutAudio:
		return reducePutAudio(s, a)
	case PatchProcessing:
		processing := cloneProcessing(s.Processing)
		processing[a.DocumentID] = a.State
		s.Processing = processing
		return s
	case SetSelectedText:
		s.SelectedText = a.Text
		return s
	default:
		return s
	}
}

func reduceAddDocuments(s domain.Session, a AddDocuments) domain.Session {
	docs := append([]domain.Document(nil), s.Documents...)
	processing := cloneProcessing(s.Processing)
	for _, incoming := range a.Documents {
		if incoming.ID == "" {
			continue
		}
		replaced := false
		for i := range docs {
			if docs[i].ID == incoming.ID {
				docs[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			docs = append(docs, incoming)
		}
		processing[incoming.ID] = incoming.Processing
	}
	s.Documents = docs
	s.Processing = processing
	return s
}

func reduceRemoveDocument(s domain.Session, a RemoveDocument) domain.Session {
	docs := make([]domain.Document, 0, len(s.Documents))
	for _, doc := range s.Documents {
		if doc.ID != a.ID {
			docs = append(docs, doc)
		}
	}
	s.Documents = docs
	processing := cloneProcessing(s.Processing)
	delete(processing, a.ID)
	s.Processing = processing
	if s.SelectedDocumentID == a.ID {
		s.SelectedDocumentID = ""
		s.SelectedText = ""
		s.CurrentPage = 1
	}
	return s
}

func reduceUpdateDocument(s domain.Session, a UpdateDocument) domain.Session {
	docs := append([]domain.Document(nil), s.Documents...)
	for i := range docs {
		if docs[i].ID == a.Document.ID {
			docs[i] = a.Document
			s.Documents = docs
			return s
		}
	}
	return s
}

func reduceSelectDocument(s domain.Session, a SelectDocument) domain.Session {
	if _, ok := s.DocumentByID(a.ID); !ok {
		s.SelectedDocumentID = ""
		s.SelectedText = ""
		s.CurrentPage = 1
		return s
	}
	s.SelectedDocumentID = a.ID
	s.CurrentPage = 1
	s.SelectedText = ""
	s.NavigationEpoch++
	return s
}

func reduceNavigateTo(s domain.Session, a NavigateTo) domain.Session {
	if a.Page < 1 {
		a.Page = 1
	}
	if _, ok := s.DocumentByID(a.DocumentID); !ok {
		return s
	}
	// Idempotent when already there: no epoch bump, no reactor wake-up.
	if s.SelectedDocumentID == a.DocumentID && s.CurrentPage == a.Page {
		return s
	}
	if s.SelectedDocumentID != a.DocumentID {
		s.SelectedText = ""
	}
	s.SelectedDocumentID = a.DocumentID
	s.CurrentPage = a.Page
	s.NavigationEpoch++
	return s
}

func reducePutDetail(s domain.Session, a PutDetail) domain.Session {
	artifacts := cloneArtifacts(s.Artifacts)
	artifact := artifacts[a.CardID]
	detail := a.Detail
	artifact.Detail = &detail
	artifacts[a.CardID] = artifact
	s.Artifacts = artifacts
	return s
}

func reducePutAudio(s domain.Session, a PutAudio) domain.Session {
	artifacts := cloneArtifacts(s.Artifacts)
	artifact := artifacts[a.CardID]
	audio := a.Audio
	artifact.Audio = &audio
	artifacts[a.CardID] = artifact
	s.Artifacts = artifacts
	return s
}

func cloneArtifacts(in map[string]domain.Artifact) map[string]domain.Artifact {
	out := make(map[string]domain.Artifact, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneProcessing(in map[string]domain.ProcessingState) map[string]domain.ProcessingState {
	out := make(map[string]domain.ProcessingState, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
