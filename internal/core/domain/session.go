package domain

import "time"

type ProcessingState string

const (
	ProcessingPending   ProcessingState = "pending"
	ProcessingCompleted ProcessingState = "completed"
	ProcessingError     ProcessingState = "error"
)

// JobCardID is the reserved card id for the job-description pseudo-card.
const JobCardID = "job-description"

type Document struct {
	ID              string          `json:"id"`
	DisplayName     string          `json:"display_name"`
	UploadedAt      time.Time       `json:"uploaded_at"`
	PageCount       int             `json:"page_count"`
	Processing      ProcessingState `json:"processing"`
	HasLocalContent bool            `json:"has_local_content"`
}

// Card is one navigable unit of derived content: a ranked section insight,
// or the job-description pseudo-card under JobCardID.
type Card struct {
	ID               string `json:"id"`
	SourceDocumentID string `json:"source_document_id"`
	SourcePage       int    `json:"source_page"`
	Heading          string `json:"heading"`
	Snippet          string `json:"snippet"`
	ImportanceRank   int    `json:"importance_rank"`
}

// Detail is the structured insight breakdown generated for a card.
type Detail struct {
	KeyInsights    []string `json:"key_insights"`
	DidYouKnow     []string `json:"did_you_know"`
	Contradictions []string `json:"contradictions"`
	Inspirations   []string `json:"inspirations"`
}

func (d Detail) IsZero() bool {
	return len(d.KeyInsights) == 0 && len(d.DidYouKnow) == 0 &&
		len(d.Contradictions) == 0 && len(d.Inspirations) == 0
}

// Audio references a generated audio resource; the binary itself is never
// part of session state.
type Audio struct {
	Location string        `json:"location"`
	Duration time.Duration `json:"duration"`
}

// Artifact is derived content cached per card. Either field may be absent.
type Artifact struct {
	Detail *Detail `json:"detail,omitempty"`
	Audio  *Audio  `json:"audio,omitempty"`
}

func (a Artifact) clone() Artifact {
	out := a
	if a.Detail != nil {
		detail := Detail{
			KeyInsights:    append([]string(nil), a.Detail.KeyInsights...),
			DidYouKnow:     append([]string(nil), a.Detail.DidYouKnow...),
			Contradictions: append([]string(nil), a.Detail.Contradictions...),
			Inspirations:   append([]string(nil), a.Detail.Inspirations...),
		}
		out.Detail = &detail
	}
	if a.Audio != nil {
		audio := *a.Audio
		out.Audio = &audio
	}
	return out
}

// SectionContent is the per-page section text used to derive highlight phrases.
type SectionContent struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	PageNumber int    `json:"page_number"`
}

// Session is the single authoritative state snapshot. Consumers receive
// value copies and must never observe partial mutation.
type Session struct {
	Documents          []Document
	SelectedDocumentID string
	CurrentPage        int
	TotalPages         int
	NavigationEpoch    uint64
	IsNavigating       bool
	SelectedText       string
	JobDescription     string
	Cards              []Card
	Artifacts          map[string]Artifact
	Processing         map[string]ProcessingState
}

func NewSession() Session {
	return Session{
		CurrentPage: 1,
		TotalPages:  1,
		Artifacts:   map[string]Artifact{},
		Processing:  map[string]ProcessingState{},
	}
}

func (s Session) DocumentByID(id string) (Document, bool) {
	for _, doc := range s.Documents {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

func (s Session) CardByID(id string) (Card, bool) {
	for _, card := range s.Cards {
		if card.ID == id {
			return card, true
		}
	}
	return Card{}, false
}

func (s Session) SelectedDocument() (Document, bool) {
	if s.SelectedDocumentID == "" {
		return Document{}, false
	}
	return s.DocumentByID(s.SelectedDocumentID)
}

// PendingDocuments lists ids still awaiting remote processing.
func (s Session) PendingDocuments() []string {
	var ids []string
	for _, doc := range s.Documents {
		if s.Processing[doc.ID] == ProcessingPending {
			ids = append(ids, doc.ID)
		}
	}
	return ids
}

// Clone produces a deep copy safe to hand to subscribers.
func (s Session) Clone() Session {
	out := s
	out.Documents = append([]Document(nil), s.Documents...)
	out.Cards = append([]Card(nil), s.Cards...)
	out.Artifacts = make(map[string]Artifact, len(s.Artifacts))
	for k, v := range s.Artifacts {
		out.Artifacts[k] = v.clone()
	}
	out.Processing = make(map[string]ProcessingState, len(s.Processing))
	for k, v := range s.Processing {
		out.Processing[k] = v
	}
	return out
}
