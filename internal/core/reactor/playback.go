package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/omarkov/insight-session/internal/core/ports"
)

type PlayState string

const (
	PlayStateNone    PlayState = "no_audio"
	PlayStatePaused  PlayState = "paused"
	PlayStatePlaying PlayState = "playing"
	PlayStateEnded   PlayState = "ended"
)

// Playback coordinates audio sub-state per card. At most one card is in the
// playing state across the whole session; starting one pauses any other.
// The coordinator holds only ephemeral state, never the store.
type Playback struct {
	generator *Generator
	output    ports.AudioOutput
	cache     ports.ContentCache
	fetch     func(ctx context.Context, location string) ([]byte, error)
	logger    *slog.Logger

	mu      sync.Mutex
	states  map[string]PlayState
	current string
}

func NewPlayback(
	generator *Generator,
	output ports.AudioOutput,
	cache ports.ContentCache,
	fetch func(ctx context.Context, location string) ([]byte, error),
	logger *slog.Logger,
) *Playback {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Playback{
		generator: generator,
		output:    output,
		cache:     cache,
		fetch:     fetch,
		logger:    logger.With("reactor", "playback"),
		states:    map[string]PlayState{},
	}
	if output != nil {
		output.OnEnded(p.handleEnded)
	}
	return p
}

// Play ensures the card's audio exists, pauses whichever card was playing,
// and starts this one. Calling Play on the already-playing card is a no-op.
func (p *Playback) Play(ctx context.Context, cardID string) error {
	if p.output == nil {
		return fmt.Errorf("no audio output configured")
	}
	audio, err := p.generator.EnsureAudio(ctx, cardID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == cardID && p.states[cardID] == PlayStatePlaying {
		return nil
	}
	return p.startLocked(ctx, cardID, audio.Location)
}

// startLocked pauses whichever card is playing and starts cardID. Callers
// hold p.mu.
func (p *Playback) startLocked(ctx context.Context, cardID, location string) error {
	if p.current != "" && p.current != cardID && p.states[p.current] == PlayStatePlaying {
		if err := p.output.Pause(ctx); err != nil {
			p.logger.Warn("pause previous audio failed", "card", p.current, "error", err)
		}
		p.states[p.current] = PlayStatePaused
	}

	if err := p.output.Play(ctx, location); err != nil {
		return fmt.Errorf("start playback for card %s: %w", cardID, err)
	}
	p.current = cardID
	p.states[cardID] = PlayStatePlaying
	return nil
}

// Pause moves the card to paused if it is the one playing.
func (p *Playback) Pause(ctx context.Context, cardID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != cardID || p.states[cardID] != PlayStatePlaying {
		return nil
	}
	if err := p.output.Pause(ctx); err != nil {
		return fmt.Errorf("pause card %s: %w", cardID, err)
	}
	p.states[cardID] = PlayStatePaused
	return nil
}

// Restart resets the card's position to zero and resumes playing. The whole
// decision runs under one lock acquisition so a concurrent Play cannot land
// between starting the card and rewinding the output.
func (p *Playback) Restart(ctx context.Context, cardID string) error {
	if p.output == nil {
		return fmt.Errorf("no audio output configured")
	}
	audio, err := p.generator.EnsureAudio(ctx, cardID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != cardID || p.states[cardID] != PlayStatePlaying {
		if err := p.startLocked(ctx, cardID, audio.Location); err != nil {
			return err
		}
	}
	if err := p.output.Restart(ctx); err != nil {
		return fmt.Errorf("restart card %s: %w", cardID, err)
	}
	return nil
}

// handleEnded records natural end of playback for whichever card owns the
// output. Driven by the output's ended event.
func (p *Playback) handleEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == "" {
		return
	}
	p.states[p.current] = PlayStateEnded
	p.current = ""
}

// State reports the card's playback sub-state.
func (p *Playback) State(cardID string) PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.states[cardID]
	if !ok {
		return PlayStateNone
	}
	return state
}

// Download materializes the card's audio in the local cache under a filename
// derived from the card heading. Playback state is not touched.
func (p *Playback) Download(ctx context.Context, cardID string) (string, error) {
	audio, err := p.generator.EnsureAudio(ctx, cardID)
	if err != nil {
		return "", err
	}

	heading := cardID
	if card, ok := p.generator.store.Snapshot().CardByID(cardID); ok && card.Heading != "" {
		heading = card.Heading
	}
	key := "audio/" + DownloadFilename(heading)

	if p.cache.Has(ctx, key) {
		return p.cache.Path(ctx, key)
	}
	data, err := p.fetch(ctx, audio.Location)
	if err != nil {
		return "", fmt.Errorf("fetch audio for card %s: %w", cardID, err)
	}
	return p.cache.Put(ctx, key, data)
}

// DownloadFilename maps a card heading to a safe mp3 filename.
func DownloadFilename(heading string) string {
	name := strings.TrimSpace(heading)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, "._")
	if name == "" {
		name = "podcast"
	}
	return name + ".mp3"
}
