package embedview

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/omarkov/insight-session/internal/core/ports"
)

// instance is one live preview bound to a single document. The component has
// no cancellation primitive; staleness is the caller's concern.
type instance struct {
	renderer   *Renderer
	documentID string
}

func (i *instance) GotoPage(ctx context.Context, page int) error {
	js := fmt.Sprintf(`window.__sessionView
		.then(function(view){ return view.getAPIs(); })
		.then(function(apis){ return apis.gotoLocation(%d); })
		.then(function(){ return true; })`, page)
	var ok bool
	if err := i.renderer.evaluate(ctx, js, &ok, true); err != nil {
		return fmt.Errorf("goto page %d: %w", page, err)
	}
	return nil
}

func (i *instance) Search(ctx context.Context, text string) (ports.SearchHandle, error) {
	handleID := "search_" + uuid.NewString()
	js := fmt.Sprintf(`window.__sessionView
		.then(function(view){ return view.getAPIs(); })
		.then(function(apis){ return apis.search(%q); })
		.then(function(handle){
			window.__sessionSearches = window.__sessionSearches || {};
			window.__sessionSearches[%q] = handle;
			return true;
		})`, text, handleID)
	var ok bool
	if err := i.renderer.evaluate(ctx, js, &ok, true); err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	return &searchHandle{renderer: i.renderer, id: handleID}, nil
}

func (i *instance) SelectedContent(ctx context.Context) (string, error) {
	js := `window.__sessionView
		.then(function(view){ return view.getAPIs(); })
		.then(function(apis){ return apis.getSelectedContent(); })
		.then(function(selected){ return (selected && selected.data) || ""; })`
	var text string
	if err := i.renderer.evaluate(ctx, js, &text, true); err != nil {
		return "", fmt.Errorf("get selected content: %w", err)
	}
	return text, nil
}

// OnSelectionEnd wires the page's selection binding to the handler. The
// component supports registration only; a document switch replaces the
// handler rather than unregistering it.
func (i *instance) OnSelectionEnd(handler func()) {
	i.renderer.setSelectionHandler(handler)
	js := fmt.Sprintf(`window.__sessionView.then(function(view){
		view.registerCallback("PREVIEW_SELECTION_END", function(){ window.%s(""); });
	}); true`, selectionBinding)
	var ok bool
	ctx, cancel := context.WithTimeout(context.Background(), i.renderer.cfg.Timeout)
	defer cancel()
	if err := i.renderer.evaluate(ctx, js, &ok, false); err != nil {
		i.renderer.logger.Warn("register selection callback failed", "document", i.documentID, "error", err)
	}
}

func (i *instance) Destroy(ctx context.Context) error {
	i.renderer.setSelectionHandler(nil)
	js := `(function(){
		var view = window.__sessionView;
		window.__sessionView = undefined;
		window.__sessionSearches = {};
		if (view) { view.then(function(v){ if (v.destroy) { v.destroy(); } }); }
		return true;
	})()`
	var ok bool
	if err := i.renderer.evaluate(ctx, js, &ok, false); err != nil {
		return fmt.Errorf("destroy preview: %w", err)
	}
	return nil
}

type searchHandle struct {
	renderer *Renderer
	id       string
}

func (h *searchHandle) Clear(ctx context.Context) error {
	js := fmt.Sprintf(`(function(){
		var searches = window.__sessionSearches || {};
		var handle = searches[%q];
		delete searches[%q];
		if (handle && handle.clear) { handle.clear(); }
		return true;
	})()`, h.id, h.id)
	var ok bool
	if err := h.renderer.evaluate(ctx, js, &ok, false); err != nil {
		return fmt.Errorf("clear search: %w", err)
	}
	return nil
}
