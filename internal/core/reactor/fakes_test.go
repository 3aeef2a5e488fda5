package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
)

// immediateClock fires every timer at once so reactor delays collapse in tests.
type immediateClock struct{}

func (immediateClock) Now() time.Time { return time.Unix(0, 0) }

func (immediateClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Unix(0, 0)
	return ch
}

type fakeRemote struct {
	mu sync.Mutex

	listDocs  []domain.Document
	listErr   error
	listCalls int

	sections    map[int][]domain.SectionContent
	sectionErr  error
	sectionLogs []int

	detail       domain.Detail
	detailErr    error
	detailCalls  int
	detailDelay  time.Duration
	jobDetail    domain.Detail
	jobCalls     int
	audio        domain.Audio
	audioDetail  *domain.Detail
	audioErr     error
	audioCalls   int
	lastAudioReq ports.AudioRequest
}

func (f *fakeRemote) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.listDocs, f.listErr
}

func (f *fakeRemote) UploadDocument(ctx context.Context, filename string, content []byte, pageCount int) (domain.Document, error) {
	return domain.Document{}, nil
}

func (f *fakeRemote) DeleteDocument(ctx context.Context, id string) error { return nil }

func (f *fakeRemote) FetchDocumentContent(ctx context.Context, id string) ([]byte, error) {
	return nil, nil
}

func (f *fakeRemote) SectionContent(ctx context.Context, documentID string, page int) ([]domain.SectionContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sectionLogs = append(f.sectionLogs, page)
	if f.sectionErr != nil {
		return nil, f.sectionErr
	}
	return f.sections[page], nil
}

func (f *fakeRemote) GenerateInsights(ctx context.Context, documentIDs []string, jobDescription string) ([]domain.Card, error) {
	return nil, nil
}

func (f *fakeRemote) GenerateDetail(ctx context.Context, req ports.DetailRequest) (domain.Detail, error) {
	f.mu.Lock()
	f.detailCalls++
	delay := f.detailDelay
	detail, err := f.detail, f.detailErr
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return detail, err
}

func (f *fakeRemote) GenerateJobDetail(ctx context.Context, jobDescription string) (domain.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobCalls++
	return f.jobDetail, nil
}

func (f *fakeRemote) GenerateAudio(ctx context.Context, req ports.AudioRequest) (domain.Audio, *domain.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioCalls++
	f.lastAudioReq = req
	return f.audio, f.audioDetail, f.audioErr
}

func (f *fakeRemote) Health(ctx context.Context) error { return nil }

type fakeInstance struct {
	mu         sync.Mutex
	pages      []int
	searches   []string
	cleared    int
	destroyed  bool
	selection  string
	onSelect   func()
	gotoErr    error
	selectErr  error
}

func (f *fakeInstance) GotoPage(ctx context.Context, page int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	return f.gotoErr
}

func (f *fakeInstance) Search(ctx context.Context, text string) (ports.SearchHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, text)
	return &fakeSearchHandle{instance: f}, nil
}

func (f *fakeInstance) SelectedContent(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection, f.selectErr
}

func (f *fakeInstance) OnSelectionEnd(handler func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSelect = handler
}

func (f *fakeInstance) Destroy(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
	return nil
}

func (f *fakeInstance) searchedPhrases() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeInstance) visitedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.pages...)
}

type fakeSearchHandle struct {
	instance *fakeInstance
}

func (h *fakeSearchHandle) Clear(ctx context.Context) error {
	h.instance.mu.Lock()
	defer h.instance.mu.Unlock()
	h.instance.cleared++
	return nil
}

type fakeRenderer struct {
	mu             sync.Mutex
	availableErrs  []error
	availableCalls int
	previewCalls   int
	instances      []*fakeInstance
}

func (f *fakeRenderer) Available(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availableCalls++
	if len(f.availableErrs) == 0 {
		return nil
	}
	err := f.availableErrs[0]
	if len(f.availableErrs) > 1 {
		f.availableErrs = f.availableErrs[1:]
	}
	return err
}

func (f *fakeRenderer) Preview(ctx context.Context, contentPath string, meta ports.DocumentMeta) (ports.RendererInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previewCalls++
	instance := &fakeInstance{}
	f.instances = append(f.instances, instance)
	return instance, nil
}

func (f *fakeRenderer) lastInstance() *fakeInstance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.instances) == 0 {
		return nil
	}
	return f.instances[len(f.instances)-1]
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Put(_ context.Context, key string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return "/cache/" + key, nil
}

func (f *fakeCache) Path(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; !ok {
		return "", domain.ErrContentUnavailable
	}
	return "/cache/" + key, nil
}

func (f *fakeCache) Has(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(level ports.NotifyLevel, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, string(level)+": "+message)
}

type fakeAudioOutput struct {
	mu       sync.Mutex
	playing  string
	plays    []string
	pauses   int
	restarts int
	onEnded  func()
}

func (f *fakeAudioOutput) Play(ctx context.Context, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = location
	f.plays = append(f.plays, location)
	return nil
}

func (f *fakeAudioOutput) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.playing = ""
	return nil
}

func (f *fakeAudioOutput) Restart(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return nil
}

func (f *fakeAudioOutput) Stop(ctx context.Context) error { return nil }

func (f *fakeAudioOutput) OnEnded(handler func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEnded = handler
}

// fireEnded simulates the audio element reaching its natural end.
func (f *fakeAudioOutput) fireEnded() {
	f.mu.Lock()
	handler := f.onEnded
	f.playing = ""
	f.mu.Unlock()
	if handler != nil {
		handler()
	}
}

type fakeCredentials struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCredentials) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCredentials) SaveToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return nil
}

func (f *fakeCredentials) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}
