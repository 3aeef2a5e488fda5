package reactor

import (
	"context"
	"log/slog"
	"time"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/core/store"
	"github.com/omarkov/insight-session/internal/observability/metrics"
)

// Reconciler diffs locally-known pending documents against the remote list
// on a fixed interval. The loop is armed only while at least one document is
// pending, stops within one interval of the last pending transition, and
// re-arms when a document becomes pending again.
type Reconciler struct {
	store       *store.Store
	remote      ports.InsightService
	credentials ports.CredentialStore
	metrics     *metrics.SessionMetrics
	logger      *slog.Logger
	interval    time.Duration
}

func NewReconciler(
	st *store.Store,
	remote ports.InsightService,
	credentials ports.CredentialStore,
	m *metrics.SessionMetrics,
	logger *slog.Logger,
	interval time.Duration,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Reconciler{
		store:       st,
		remote:      remote,
		credentials: credentials,
		metrics:     m,
		logger:      logger.With("reactor", "reconcile"),
		interval:    interval,
	}
}

// Run blocks until ctx is done. With nothing pending it sits on the store
// subscription and issues zero poll requests.
func (r *Reconciler) Run(ctx context.Context) {
	notify, cancel := r.store.Subscribe()
	defer cancel()

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	arm := func() {
		pending := len(r.store.Snapshot().PendingDocuments())
		r.metrics.PendingDocuments(pending)
		if pending > 0 && ticker == nil {
			ticker = time.NewTicker(r.interval)
			tick = ticker.C
			r.logger.Debug("polling armed", "pending", pending)
		}
		if pending == 0 && ticker != nil {
			stopTicker()
			r.logger.Debug("polling disarmed")
		}
	}

	arm()
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			arm()
		case <-tick:
			r.poll(ctx)
			arm()
		}
	}
}

// poll fetches the remote document list and patches any pending document
// whose remote processing state changed. Errors never stop the loop; a 401
// clears the stored credential so the next interactive action
// re-authenticates, without forcing a redirect.
func (r *Reconciler) poll(ctx context.Context) {
	r.metrics.PollCycle()

	remote, err := r.remote.ListDocuments(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			if clearErr := r.credentials.Clear(ctx); clearErr != nil {
				r.logger.Warn("clear credential failed", "error", clearErr)
			}
			r.logger.Warn("authentication expired during polling")
			return
		}
		r.logger.Warn("status poll failed", "error", err)
		return
	}

	byID := make(map[string]domain.ProcessingState, len(remote))
	for _, doc := range remote {
		byID[doc.ID] = doc.Processing
	}

	snap := r.store.Snapshot()
	for _, id := range snap.PendingDocuments() {
		state, ok := byID[id]
		if !ok || state == snap.Processing[id] {
			continue
		}
		r.logger.Info("processing state changed", "document", id, "state", state)
		r.store.Dispatch(store.PatchProcessing{DocumentID: id, State: state})
	}
}
