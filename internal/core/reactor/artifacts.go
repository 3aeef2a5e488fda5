package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/core/store"
	"github.com/omarkov/insight-session/internal/observability/metrics"
)

// Generator lazily produces and caches per-card artifacts. Both Ensure
// methods are idempotent and coalescing: a cached artifact returns without a
// network call, and concurrent callers for the same card share one in-flight
// generation. Results are published through the store; failures cache
// nothing, so a retry is a fresh call.
type Generator struct {
	store    *store.Store
	remote   ports.InsightService
	notifier ports.Notifier
	metrics  *metrics.SessionMetrics
	logger   *slog.Logger
	flights  singleflight.Group
}

func NewGenerator(
	st *store.Store,
	remote ports.InsightService,
	notifier ports.Notifier,
	m *metrics.SessionMetrics,
	logger *slog.Logger,
) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		store:    st,
		remote:   remote,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With("reactor", "artifacts"),
	}
}

func (g *Generator) EnsureDetail(ctx context.Context, cardID string) (domain.Detail, error) {
	if artifact, ok := g.store.Snapshot().Artifacts[cardID]; ok && artifact.Detail != nil {
		return *artifact.Detail, nil
	}

	started := time.Now()
	result, err, _ := g.flights.Do("detail:"+cardID, func() (any, error) {
		// Re-check under the flight: a racing caller may have published.
		if artifact, ok := g.store.Snapshot().Artifacts[cardID]; ok && artifact.Detail != nil {
			return *artifact.Detail, nil
		}
		detail, err := g.generateDetail(ctx, cardID)
		if err != nil {
			return domain.Detail{}, err
		}
		g.store.Dispatch(store.PutDetail{CardID: cardID, Detail: detail})
		return detail, nil
	})
	if err != nil {
		g.notify(ports.NotifyError, "insight generation failed; try again")
		g.metrics.GenerationFinished("detail", time.Since(started), err)
		return domain.Detail{}, err
	}
	g.metrics.GenerationFinished("detail", time.Since(started), nil)
	return result.(domain.Detail), nil
}

func (g *Generator) EnsureAudio(ctx context.Context, cardID string) (domain.Audio, error) {
	if artifact, ok := g.store.Snapshot().Artifacts[cardID]; ok && artifact.Audio != nil {
		return *artifact.Audio, nil
	}

	started := time.Now()
	result, err, _ := g.flights.Do("audio:"+cardID, func() (any, error) {
		if artifact, ok := g.store.Snapshot().Artifacts[cardID]; ok && artifact.Audio != nil {
			return *artifact.Audio, nil
		}
		audio, detail, err := g.generateAudio(ctx, cardID)
		if err != nil {
			return domain.Audio{}, err
		}
		// The remote may synthesize the detail alongside the audio; cache
		// both so a later EnsureDetail is free.
		if detail != nil {
			if artifact, ok := g.store.Snapshot().Artifacts[cardID]; !ok || artifact.Detail == nil {
				g.store.Dispatch(store.PutDetail{CardID: cardID, Detail: *detail})
			}
		}
		g.store.Dispatch(store.PutAudio{CardID: cardID, Audio: audio})
		return audio, nil
	})
	if err != nil {
		g.notify(ports.NotifyError, "podcast generation failed; try again")
		g.metrics.GenerationFinished("audio", time.Since(started), err)
		return domain.Audio{}, err
	}
	g.metrics.GenerationFinished("audio", time.Since(started), nil)
	return result.(domain.Audio), nil
}

func (g *Generator) generateDetail(ctx context.Context, cardID string) (domain.Detail, error) {
	started := time.Now()
	snap := g.store.Snapshot()

	if cardID == domain.JobCardID {
		if snap.JobDescription == "" {
			return domain.Detail{}, domain.WrapError(domain.ErrInvalidInput, "generate job detail",
				fmt.Errorf("no job description in session"))
		}
		detail, err := g.remote.GenerateJobDetail(ctx, snap.JobDescription)
		g.logGeneration("detail", cardID, started, err)
		return detail, err
	}

	card, ok := snap.CardByID(cardID)
	if !ok {
		return domain.Detail{}, domain.WrapError(domain.ErrCardNotFound, "generate detail",
			fmt.Errorf("card %s", cardID))
	}
	doc, _ := snap.DocumentByID(card.SourceDocumentID)
	detail, err := g.remote.GenerateDetail(ctx, ports.DetailRequest{
		Heading:      card.Heading,
		Snippet:      card.Snippet,
		DocumentName: doc.DisplayName,
		PageNumber:   card.SourcePage,
	})
	g.logGeneration("detail", cardID, started, err)
	return detail, err
}

func (g *Generator) generateAudio(ctx context.Context, cardID string) (domain.Audio, *domain.Detail, error) {
	started := time.Now()
	snap := g.store.Snapshot()

	req := ports.AudioRequest{CardID: cardID}
	if cardID == domain.JobCardID {
		if snap.JobDescription == "" {
			return domain.Audio{}, nil, domain.WrapError(domain.ErrInvalidInput, "generate job audio",
				fmt.Errorf("no job description in session"))
		}
		req.Heading = "Job description"
		req.Content = snap.JobDescription
	} else {
		card, ok := snap.CardByID(cardID)
		if !ok {
			return domain.Audio{}, nil, domain.WrapError(domain.ErrCardNotFound, "generate audio",
				fmt.Errorf("card %s", cardID))
		}
		doc, _ := snap.DocumentByID(card.SourceDocumentID)
		req.Heading = card.Heading
		req.Content = card.Snippet
		req.DocumentName = doc.DisplayName
		req.PageNumber = card.SourcePage
	}
	if artifact, ok := snap.Artifacts[cardID]; ok {
		req.Detail = artifact.Detail
	}

	audio, detail, err := g.remote.GenerateAudio(ctx, req)
	g.logGeneration("audio", cardID, started, err)
	return audio, detail, err
}

func (g *Generator) logGeneration(kind, cardID string, started time.Time, err error) {
	if err != nil {
		g.logger.Warn("generation failed", "kind", kind, "card", cardID,
			"elapsed", time.Since(started), "error", err)
		return
	}
	g.logger.Info("generation complete", "kind", kind, "card", cardID,
		"elapsed", time.Since(started))
}

func (g *Generator) notify(level ports.NotifyLevel, message string) {
	if g.notifier != nil {
		g.notifier.Notify(level, message)
	}
}
