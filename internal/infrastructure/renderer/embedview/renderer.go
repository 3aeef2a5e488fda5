// Package embedview drives the embedded document-rendering component inside
// a headless Chrome tab. The component is opaque and promise-based: this
// adapter only forwards calls (preview, goto, search, selection, destroy)
// and never inspects rendering internals.
package embedview

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/omarkov/insight-session/internal/core/ports"
)

const (
	selectionBinding  = "__sessionSelectionEnd"
	audioEndedBinding = "__sessionAudioEnded"
)

type Config struct {
	ViewerURL string
	Headless  bool
	Timeout   time.Duration
}

// Renderer owns one headless browser tab hosting the viewer page. At most
// one preview instance is live at a time; Preview destroys nothing itself,
// callers tear down the previous instance first.
type Renderer struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	started     bool

	handlerMu         sync.Mutex
	selectionHandler  func()
	audioEndedHandler func()
}

func New(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Renderer{cfg: cfg, logger: logger.With("component", "embedview")}
}

// start lazily launches the browser, navigates to the viewer page, and wires
// the selection-end binding. The binding cannot be removed once added; late
// events are dropped when no handler is registered.
func (r *Renderer) start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(r.cfg.ViewerURL),
		runtime.AddBinding(selectionBinding),
		runtime.AddBinding(audioEndedBinding),
	); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("open viewer page: %w", err)
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok {
			return
		}
		r.handlerMu.Lock()
		var handler func()
		switch called.Name {
		case selectionBinding:
			handler = r.selectionHandler
		case audioEndedBinding:
			handler = r.audioEndedHandler
		}
		r.handlerMu.Unlock()
		if handler != nil {
			go handler()
		}
	})

	r.allocCancel = allocCancel
	r.tabCtx = tabCtx
	r.tabCancel = tabCancel
	r.started = true
	r.logger.Info("viewer page opened", "url", r.cfg.ViewerURL)
	return nil
}

// Available probes the component's global entry point once. Callers own the
// bounded retry budget.
func (r *Renderer) Available(ctx context.Context) error {
	if err := r.start(ctx); err != nil {
		return err
	}
	var ready bool
	err := r.evaluate(ctx, `typeof window.EmbedView !== "undefined"`, &ready, false)
	if err != nil {
		return fmt.Errorf("probe viewer entry point: %w", err)
	}
	if !ready {
		return fmt.Errorf("viewer entry point not loaded")
	}
	return nil
}

// Preview loads the document's binary content into the component and awaits
// its readiness promise.
func (r *Renderer) Preview(ctx context.Context, contentPath string, meta ports.DocumentMeta) (ports.RendererInstance, error) {
	if err := r.start(ctx); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(contentPath)
	if err != nil {
		return nil, fmt.Errorf("read document content: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	js := fmt.Sprintf(`window.__sessionView = window.EmbedView.previewDocument({
		content: %q,
		encoding: "base64",
		id: %q,
		fileName: %q,
		selectionBinding: %q,
	}); window.__sessionView.then(function(){ return true; })`,
		encoded, meta.ID, meta.DisplayName, selectionBinding)

	var ok bool
	if err := r.evaluate(ctx, js, &ok, true); err != nil {
		return nil, fmt.Errorf("preview document: %w", err)
	}
	return &instance{renderer: r, documentID: meta.ID}, nil
}

// evaluate runs JS in the viewer tab, optionally awaiting promise
// resolution, bounded by the adapter timeout.
func (r *Renderer) evaluate(ctx context.Context, js string, out any, awaitPromise bool) error {
	r.mu.Lock()
	tabCtx := r.tabCtx
	r.mu.Unlock()
	if tabCtx == nil {
		return fmt.Errorf("viewer tab not open")
	}

	runCtx, cancel := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	action := chromedp.Evaluate(js, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(awaitPromise)
	})
	return chromedp.Run(runCtx, action)
}

func (r *Renderer) setSelectionHandler(handler func()) {
	r.handlerMu.Lock()
	defer r.handlerMu.Unlock()
	r.selectionHandler = handler
}

func (r *Renderer) setAudioEndedHandler(handler func()) {
	r.handlerMu.Lock()
	defer r.handlerMu.Unlock()
	r.audioEndedHandler = handler
}

// Close shuts the browser down. Separate from instance destroy: the tab and
// entry point survive document switches.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.tabCancel()
	r.allocCancel()
	r.started = false
	r.tabCtx = nil
}
