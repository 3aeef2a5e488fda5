package reactor

import (
	"context"
	"testing"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/store"
)

func newTestPlayback(t *testing.T) (*Playback, *store.Store, *fakeAudioOutput, *fakeCache) {
	t.Helper()
	st := store.New(nil)
	remote := &fakeRemote{}
	generator := NewGenerator(st, remote, nil, nil, nil)
	output := &fakeAudioOutput{}
	cache := newFakeCache()
	fetch := func(ctx context.Context, location string) ([]byte, error) {
		return []byte("audio-bytes"), nil
	}
	playback := NewPlayback(generator, output, cache, fetch, nil)
	return playback, st, output, cache
}

func seedAudio(st *store.Store, cardID, location string) {
	st.Dispatch(store.ReplaceCards{
		Cards: []domain.Card{
			{ID: "c1", Heading: "First Card"},
			{ID: "c2", Heading: "Second Card"},
		},
		JobDescription: "job",
	})
	st.Dispatch(store.PutAudio{CardID: cardID, Audio: domain.Audio{Location: location}})
}

func TestPlayPausesPreviousCard(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	seedAudio(st, "c2", "/media/c2.mp3")
	ctx := context.Background()

	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("play c1: %v", err)
	}
	if err := playback.Play(ctx, "c2"); err != nil {
		t.Fatalf("play c2: %v", err)
	}

	if playback.State("c1") != PlayStatePaused {
		t.Errorf("starting c2 must pause c1, got %s", playback.State("c1"))
	}
	if playback.State("c2") != PlayStatePlaying {
		t.Errorf("expected c2 playing, got %s", playback.State("c2"))
	}
	if output.pauses != 1 {
		t.Errorf("expected one pause call, got %d", output.pauses)
	}
}

func TestPlayIsIdempotentWhilePlaying(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	ctx := context.Background()

	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(output.plays) != 1 {
		t.Errorf("replaying the active card must not restart output, got %d plays", len(output.plays))
	}
}

func TestPauseIgnoresNonPlayingCard(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	ctx := context.Background()

	if err := playback.Pause(ctx, "c1"); err != nil {
		t.Fatalf("pause idle card: %v", err)
	}
	if output.pauses != 0 {
		t.Errorf("pausing an idle card must be a no-op")
	}
	if playback.State("c1") != PlayStateNone {
		t.Errorf("expected no_audio, got %s", playback.State("c1"))
	}
}

func TestOutputEndedEventReleasesCurrentSlot(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	ctx := context.Background()

	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("play: %v", err)
	}
	output.fireEnded()
	if playback.State("c1") != PlayStateEnded {
		t.Errorf("expected ended, got %s", playback.State("c1"))
	}

	// The slot is free again: replaying the same card starts fresh output.
	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("replay after end: %v", err)
	}
	if playback.State("c1") != PlayStatePlaying {
		t.Errorf("expected playing after replay, got %s", playback.State("c1"))
	}
	if len(output.plays) != 2 {
		t.Errorf("expected a second output play, got %d", len(output.plays))
	}
}

func TestRestartStartsNonPlayingCardAtomically(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	seedAudio(st, "c2", "/media/c2.mp3")
	ctx := context.Background()

	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("play c1: %v", err)
	}
	if err := playback.Restart(ctx, "c2"); err != nil {
		t.Fatalf("restart c2: %v", err)
	}

	if playback.State("c1") != PlayStatePaused {
		t.Errorf("restarting c2 must pause c1, got %s", playback.State("c1"))
	}
	if playback.State("c2") != PlayStatePlaying {
		t.Errorf("expected c2 playing, got %s", playback.State("c2"))
	}
	if output.restarts != 1 {
		t.Errorf("expected one output restart, got %d", output.restarts)
	}
}

func TestRestartRewindsPlayingCardWithoutReplay(t *testing.T) {
	playback, st, output, _ := newTestPlayback(t)
	seedAudio(st, "c1", "/media/c1.mp3")
	ctx := context.Background()

	if err := playback.Play(ctx, "c1"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := playback.Restart(ctx, "c1"); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if len(output.plays) != 1 {
		t.Errorf("restarting the playing card must not re-issue output play, got %d", len(output.plays))
	}
	if output.restarts != 1 {
		t.Errorf("expected one output restart, got %d", output.restarts)
	}
	if playback.State("c1") != PlayStatePlaying {
		t.Errorf("expected playing, got %s", playback.State("c1"))
	}
}

func TestDownloadWritesSanitizedFilename(t *testing.T) {
	playback, st, _, cache := newTestPlayback(t)
	st.Dispatch(store.ReplaceCards{
		Cards:          []domain.Card{{ID: "c1", Heading: "Q3 Report: Findings & Risks"}},
		JobDescription: "job",
	})
	st.Dispatch(store.PutAudio{CardID: "c1", Audio: domain.Audio{Location: "/media/c1.mp3"}})

	path, err := playback.Download(context.Background(), "c1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if path == "" {
		t.Fatalf("expected a cache path")
	}
	if !cache.Has(context.Background(), "audio/Q3_Report__Findings___Risks.mp3") {
		t.Errorf("expected sanitized filename in cache, entries: %v", cache.entries)
	}
}

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Simple Heading", "Simple_Heading.mp3"},
		{"Q3 Report: Findings & Risks", "Q3_Report__Findings___Risks.mp3"},
		{"  ", "podcast.mp3"},
		{"...", "podcast.mp3"},
		{"already-safe_name.v2", "already-safe_name.v2.mp3"},
	}
	for _, tc := range tests {
		if got := DownloadFilename(tc.heading); got != tc.want {
			t.Errorf("DownloadFilename(%q) = %q, want %q", tc.heading, got, tc.want)
		}
	}
}
