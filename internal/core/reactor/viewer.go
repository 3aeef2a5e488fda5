package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/core/store"
	"github.com/omarkov/insight-session/internal/observability/metrics"
)

type ViewerConfig struct {
	ReadyAttempts  int
	ReadyDelay     time.Duration
	SettleDelay    time.Duration
	FollowupDelay  time.Duration
	ContentKeyFunc func(documentID string) string
}

func (c ViewerConfig) normalize() ViewerConfig {
	out := c
	if out.ReadyAttempts <= 0 {
		out.ReadyAttempts = 10
	}
	if out.ReadyDelay <= 0 {
		out.ReadyDelay = 500 * time.Millisecond
	}
	if out.SettleDelay <= 0 {
		out.SettleDelay = time.Second
	}
	if out.FollowupDelay <= 0 {
		out.FollowupDelay = 750 * time.Millisecond
	}
	if out.ContentKeyFunc == nil {
		out.ContentKeyFunc = func(documentID string) string { return "pdf/" + documentID }
	}
	return out
}

// Viewer owns the lifecycle of at most one live renderer instance and keeps
// its displayed page consistent with the store's selection, current page and
// navigation epoch. It is a pure reactor: it observes snapshots, issues
// renderer and remote calls, and dispatches results back into the store.
//
// The instance handle, search handles and pending delays are ephemeral and
// never part of session state; they are invalidated on teardown before any
// new instance is created.
type Viewer struct {
	store    *store.Store
	remote   ports.InsightService
	renderer ports.Renderer
	cache    ports.ContentCache
	notifier ports.Notifier
	clock    ports.Clock
	metrics  *metrics.SessionMetrics
	logger   *slog.Logger
	cfg      ViewerConfig

	instance      ports.RendererInstance
	instanceDoc   string
	appliedEpoch  uint64
	freshOpen     bool
	searchHandles []ports.SearchHandle
	unavailable   bool
	refetchWarned map[string]bool
}

func NewViewer(
	st *store.Store,
	remote ports.InsightService,
	renderer ports.Renderer,
	cache ports.ContentCache,
	notifier ports.Notifier,
	m *metrics.SessionMetrics,
	logger *slog.Logger,
	cfg ViewerConfig,
) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		store:         st,
		remote:        remote,
		renderer:      renderer,
		cache:         cache,
		notifier:      notifier,
		clock:         systemClock{},
		metrics:       m,
		logger:        logger.With("reactor", "viewer"),
		cfg:           cfg.normalize(),
		refetchWarned: map[string]bool{},
	}
}

// WithClock replaces the timer source. Test hook.
func (v *Viewer) WithClock(clock ports.Clock) *Viewer {
	v.clock = clock
	return v
}

// Run blocks until ctx is done, resynchronizing against every store change.
func (v *Viewer) Run(ctx context.Context) {
	notify, cancel := v.store.Subscribe()
	defer cancel()
	defer v.teardown()

	v.sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			v.sync(ctx)
		}
	}
}

// sync drives the state machine one step toward the current snapshot. It is
// re-entered after every await via the coalescing subscription, so superseded
// intermediate states are dropped rather than queued.
func (v *Viewer) sync(ctx context.Context) {
	snap := v.store.Snapshot()

	if snap.SelectedDocumentID != v.instanceDoc && v.instance != nil {
		v.teardown()
	}
	if snap.SelectedDocumentID == "" {
		return
	}

	doc, ok := snap.SelectedDocument()
	if !ok {
		return
	}
	if !doc.HasLocalContent {
		v.warnRefetch(doc)
		return
	}

	if v.instance == nil {
		if v.unavailable {
			return
		}
		if err := v.initialize(ctx, doc); err != nil {
			v.logger.Error("renderer initialization failed", "document", doc.ID, "error", err)
			return
		}
		snap = v.store.Snapshot()
		if snap.SelectedDocumentID != v.instanceDoc {
			v.teardown()
			return
		}
	}

	if snap.NavigationEpoch > v.appliedEpoch {
		v.navigate(ctx, snap)
	}
}

// initialize tears down any prior instance, probes renderer availability with
// a bounded attempt budget, and opens a preview of the document's cached
// binary content.
func (v *Viewer) initialize(ctx context.Context, doc domain.Document) error {
	v.teardown()

	contentPath, err := v.cache.Path(ctx, v.cfg.ContentKeyFunc(doc.ID))
	if err != nil {
		v.warnRefetch(doc)
		return domain.WrapError(domain.ErrContentUnavailable, "locate cached content", err)
	}

	if err := v.awaitAvailable(ctx); err != nil {
		// A cancelled context means shutdown or supersession, not a broken
		// renderer; only genuine probe exhaustion latches.
		if ctx.Err() == nil {
			v.unavailable = true
			v.notify(ports.NotifyError, "document viewer failed to load; reload the session to recover")
		}
		return err
	}

	instance, err := v.renderer.Preview(ctx, contentPath, ports.DocumentMeta{
		ID:          doc.ID,
		DisplayName: doc.DisplayName,
	})
	if err != nil {
		v.notify(ports.NotifyError, "could not open document preview")
		return fmt.Errorf("preview document %s: %w", doc.ID, err)
	}

	v.instance = instance
	v.instanceDoc = doc.ID
	v.appliedEpoch = 0
	v.freshOpen = true
	v.metrics.RendererStarted()

	if doc.PageCount > 0 {
		v.store.Dispatch(store.SetTotalPages{Total: doc.PageCount})
	}
	v.registerSelectionListener(ctx, instance, doc.ID)

	v.logger.Info("renderer ready", "document", doc.ID)
	return nil
}

func (v *Viewer) awaitAvailable(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= v.cfg.ReadyAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = v.renderer.Available(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.clock.After(v.cfg.ReadyDelay):
		}
	}
	return domain.WrapError(domain.ErrRendererUnavailable, "await renderer", lastErr)
}

// registerSelectionListener forwards selection-end events into the store.
// The renderer offers no unregistration, so the handler guards against late
// callbacks by re-checking the selected document id before dispatching.
func (v *Viewer) registerSelectionListener(ctx context.Context, instance ports.RendererInstance, documentID string) {
	instance.OnSelectionEnd(func() {
		if v.store.Snapshot().SelectedDocumentID != documentID {
			return
		}
		text, err := instance.SelectedContent(ctx)
		if err != nil {
			v.logger.Warn("fetch selected content failed", "document", documentID, "error", err)
			return
		}
		if v.store.Snapshot().SelectedDocumentID != documentID {
			return
		}
		v.store.Dispatch(store.SetSelectedText{Text: text})
	})
}

// navigate issues a goto-page call for the snapshot's epoch. The renderer has
// no cancellation primitive: if a newer epoch lands while the call is
// outstanding, the result is applied only when still current, and the
// coalesced wake-up issues a fresh call for the latest epoch.
func (v *Viewer) navigate(ctx context.Context, snap domain.Session) {
	epoch := snap.NavigationEpoch
	page := snap.CurrentPage
	documentID := v.instanceDoc
	fresh := v.freshOpen
	v.freshOpen = false

	v.store.Dispatch(store.SetNavigating{Active: true})
	err := v.instance.GotoPage(ctx, page)
	v.store.Dispatch(store.SetNavigating{Active: false})

	current := v.store.Snapshot()
	if current.SelectedDocumentID != documentID || current.NavigationEpoch != epoch {
		// Superseded while in flight; the pending wake-up re-syncs.
		return
	}
	v.appliedEpoch = epoch
	if err != nil {
		v.logger.Warn("goto page failed", "document", documentID, "page", page, "error", err)
		v.notify(ports.NotifyWarn, "could not navigate the viewer")
		return
	}
	v.metrics.NavigationApplied()

	if fresh && page == 1 {
		return
	}
	v.highlight(ctx, documentID, page, epoch)
}

// highlight runs one highlight cycle: clear previous results, derive search
// phrases from the page's section content, wait for the page to settle, then
// search. A more distinctive followup phrase is tried afterwards without
// clearing the first result set.
func (v *Viewer) highlight(ctx context.Context, documentID string, page int, epoch uint64) {
	v.clearSearches(ctx)

	sections, err := v.remote.SectionContent(ctx, documentID, page)
	if err != nil {
		v.logger.Warn("section content fetch failed", "document", documentID, "page", page, "error", err)
		return
	}
	primary, followup := derivePhrases(sections)
	if primary == "" {
		return
	}

	if !v.waitCurrent(ctx, v.cfg.SettleDelay, documentID, epoch) {
		return
	}
	v.search(ctx, documentID, primary)

	if followup == "" {
		return
	}
	if !v.waitCurrent(ctx, v.cfg.FollowupDelay, documentID, epoch) {
		return
	}
	v.search(ctx, documentID, followup)
}

func (v *Viewer) search(ctx context.Context, documentID, phrase string) {
	if v.instance == nil || v.instanceDoc != documentID {
		return
	}
	handle, err := v.instance.Search(ctx, phrase)
	if err != nil {
		v.logger.Warn("search failed", "phrase", phrase, "error", err)
		return
	}
	v.searchHandles = append(v.searchHandles, handle)
	v.metrics.HighlightIssued()
}

// waitCurrent sleeps d and reports whether the (document, epoch) pair is
// still current afterwards. A false return abandons the cycle; the timer is
// released either way.
func (v *Viewer) waitCurrent(ctx context.Context, d time.Duration, documentID string, epoch uint64) bool {
	select {
	case <-ctx.Done():
		return false
	case <-v.clock.After(d):
	}
	snap := v.store.Snapshot()
	return snap.SelectedDocumentID == documentID && snap.NavigationEpoch == epoch && v.instance != nil
}

func (v *Viewer) clearSearches(ctx context.Context) {
	for _, handle := range v.searchHandles {
		if err := handle.Clear(ctx); err != nil {
			v.logger.Debug("clear search handle", "error", err)
		}
	}
	v.searchHandles = nil
}

// teardown releases the live instance. Destroy failures are logged and
// ignored; the handle is invalidated before any new instance is created.
func (v *Viewer) teardown() {
	if v.instance == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v.clearSearches(ctx)
	if err := v.instance.Destroy(ctx); err != nil {
		v.logger.Warn("renderer destroy failed", "document", v.instanceDoc, "error", err)
	}
	v.instance = nil
	v.instanceDoc = ""
	v.appliedEpoch = 0
	v.freshOpen = false
	v.metrics.RendererStopped()
}

func (v *Viewer) warnRefetch(doc domain.Document) {
	if v.refetchWarned[doc.ID] {
		return
	}
	v.refetchWarned[doc.ID] = true
	v.notify(ports.NotifyWarn, fmt.Sprintf("%s needs to be downloaded again before viewing", doc.DisplayName))
}

func (v *Viewer) notify(level ports.NotifyLevel, message string) {
	if v.notifier != nil {
		v.notifier.Notify(level, message)
	}
}

const (
	headingMinWords = 3
	headingMinRunes = 20
	phraseWordCount = 8
	contentMinWords = 3
)

// derivePhrases picks the search phrases for a highlight cycle. A heading is
// preferred when distinctive enough (>= headingMinWords words or >=
// headingMinRunes runes); the content-derived phrase then serves as the
// followup. With a weak heading the content phrase becomes primary. Both
// empty means the cycle is abandoned.
func derivePhrases(sections []domain.SectionContent) (primary, followup string) {
	var heading, content string
	for _, section := range sections {
		if heading == "" && strings.TrimSpace(section.Title) != "" {
			heading = strings.TrimSpace(section.Title)
		}
		if content == "" && strings.TrimSpace(section.Content) != "" {
			content = strings.TrimSpace(section.Content)
		}
	}

	contentPhrase := leadingWords(content, phraseWordCount)
	if len(strings.Fields(contentPhrase)) < contentMinWords {
		contentPhrase = ""
	}

	headingDistinctive := heading != "" &&
		(len(strings.Fields(heading)) >= headingMinWords || utf8.RuneCountInString(heading) >= headingMinRunes)

	switch {
	case headingDistinctive && contentPhrase != "" && contentPhrase != heading:
		return heading, contentPhrase
	case headingDistinctive:
		return heading, ""
	case contentPhrase != "":
		return contentPhrase, ""
	default:
		return "", ""
	}
}

func leadingWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
