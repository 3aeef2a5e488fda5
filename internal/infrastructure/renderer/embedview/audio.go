package embedview

import (
	"context"
	"fmt"
)

// AudioOutput plays generated audio through an <audio> element on the viewer
// page, so playback shares the browser the renderer already runs in.
type AudioOutput struct {
	renderer *Renderer
}

func NewAudioOutput(renderer *Renderer) *AudioOutput {
	return &AudioOutput{renderer: renderer}
}

func (a *AudioOutput) Play(ctx context.Context, location string) error {
	if err := a.renderer.start(ctx); err != nil {
		return err
	}
	js := fmt.Sprintf(`(function(){
		var el = window.__sessionAudio;
		if (!el) {
			el = document.createElement("audio");
			window.__sessionAudio = el;
			document.body.appendChild(el);
			el.addEventListener("ended", function(){ window.%s(""); });
		}
		if (el.src !== %q) { el.src = %q; }
		return el.play().then(function(){ return true; });
	})()`, audioEndedBinding, location, location)
	var ok bool
	if err := a.renderer.evaluate(ctx, js, &ok, true); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}

func (a *AudioOutput) Pause(ctx context.Context) error {
	var ok bool
	js := `(function(){ var el = window.__sessionAudio; if (el) { el.pause(); } return true; })()`
	if err := a.renderer.evaluate(ctx, js, &ok, false); err != nil {
		return fmt.Errorf("pause audio: %w", err)
	}
	return nil
}

func (a *AudioOutput) Restart(ctx context.Context) error {
	var ok bool
	js := `(function(){
		var el = window.__sessionAudio;
		if (el) { el.currentTime = 0; el.play(); }
		return true;
	})()`
	if err := a.renderer.evaluate(ctx, js, &ok, false); err != nil {
		return fmt.Errorf("restart audio: %w", err)
	}
	return nil
}

// OnEnded forwards the <audio> element's ended event. The handler survives
// document switches; the element belongs to the page, not the instance.
func (a *AudioOutput) OnEnded(handler func()) {
	a.renderer.setAudioEndedHandler(handler)
}

func (a *AudioOutput) Stop(ctx context.Context) error {
	var ok bool
	js := `(function(){
		var el = window.__sessionAudio;
		if (el) { el.pause(); el.currentTime = 0; }
		return true;
	})()`
	if err := a.renderer.evaluate(ctx, js, &ok, false); err != nil {
		return fmt.Errorf("stop audio: %w", err)
	}
	return nil
}
