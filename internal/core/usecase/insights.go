package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/core/store"
)

// InsightsUseCase runs the batch insight generation that replaces the card
// set wholesale.
type InsightsUseCase struct {
	store  *store.Store
	remote ports.InsightService
	logger *slog.Logger
}

func NewInsightsUseCase(st *store.Store, remote ports.InsightService, logger *slog.Logger) *InsightsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsUseCase{
		store:  st,
		remote: remote,
		logger: logger.With("usecase", "insights"),
	}
}

// GenerateInsights validates locally before any network call: an empty job
// description or empty document set fails fast with no side effects. On
// success the card set is replaced; artifacts for the previous batch become
// unreachable but are not actively purged.
func (uc *InsightsUseCase) GenerateInsights(ctx context.Context, documentIDs []string, jobDescription string) ([]domain.Card, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate insights",
			errors.New("job description is empty"))
	}
	if len(documentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate insights",
			errors.New("no documents selected"))
	}
	snap := uc.store.Snapshot()
	for _, id := range documentIDs {
		if _, ok := snap.DocumentByID(id); !ok {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "generate insights",
				fmt.Errorf("id %s", id))
		}
	}

	cards, err := uc.remote.GenerateInsights(ctx, documentIDs, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	uc.store.Dispatch(store.ReplaceCards{Cards: cards, JobDescription: jobDescription})
	uc.logger.Info("insight batch replaced", "cards", len(cards), "documents", len(documentIDs))
	return cards, nil
}
