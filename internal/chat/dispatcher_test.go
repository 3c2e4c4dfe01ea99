package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atharv2823/BaatCheet/internal/provider"
	"github.com/atharv2823/BaatCheet/internal/storage"
)

// fakeProvider returns a canned reply or error, optionally blocking until
// released (for busy-guard and timeout tests).
type fakeProvider struct {
	reply string
	err   error
	block chan struct{} // when non-nil, Generate waits for close or ctx

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Name() string         { return "fake" }
func (f *fakeProvider) DefaultModel() string { return "fake-model" }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestDispatcher(t *testing.T, p *fakeProvider) (*Dispatcher, *Store, *storage.MemStorage) {
	t.Helper()
	mem := storage.NewMemStorage()
	store := NewStore(mem)
	d := NewDispatcher(store, p, "", time.Second, zerolog.Nop())
	return d, store, mem
}

func TestSubmit_EmptyInputIgnored(t *testing.T) {
	p := &fakeProvider{reply: "unused"}
	d, store, _ := newTestDispatcher(t, p)

	for _, input := range []string{"", "   ", "\t\n  "} {
		if err := d.Submit(context.Background(), input); err != nil {
			t.Fatalf("Submit(%q): %v", input, err)
		}
	}
	if store.Len() != 0 {
		t.Errorf("store has %d conversations, want 0", store.Len())
	}
	if p.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.callCount())
	}
}

func TestSubmit_FirstTurnCreatesConversation(t *testing.T) {
	p := &fakeProvider{reply: "Hi there"}
	d, store, mem := newTestDispatcher(t, p)

	if err := d.Submit(context.Background(), "Hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("store has %d conversations, want 1", store.Len())
	}
	conv := store.Active()
	if conv == nil {
		t.Fatal("expected the new conversation to be active")
	}
	want := []provider.Message{
		{Role: provider.RoleUser, Content: "Hello"},
		{Role: provider.RoleAssistant, Content: "Hi there"},
	}
	got := store.Messages(conv.ID)
	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// The persisted blob reproduces the same transcript.
	reloaded := NewStore(mem).Messages(conv.ID)
	if len(reloaded) != 2 || reloaded[0] != want[0] || reloaded[1] != want[1] {
		t.Errorf("reloaded transcript = %+v, want %+v", reloaded, want)
	}
}

func TestSubmit_TrimsUtterance(t *testing.T) {
	p := &fakeProvider{reply: "ok"}
	d, store, _ := newTestDispatcher(t, p)

	if err := d.Submit(context.Background(), "  Hello  \n"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	msgs := store.Messages(store.ActiveID())
	if msgs[0].Content != "Hello" {
		t.Errorf("user message = %q, want %q", msgs[0].Content, "Hello")
	}
}

func TestSubmit_FailureAppendsFallback(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom: connection refused")}
	d, store, _ := newTestDispatcher(t, p)

	if err := d.Submit(context.Background(), "Hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	msgs := store.Messages(store.ActiveID())
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "Hello" || msgs[0].Role != provider.RoleUser {
		t.Errorf("user message altered: %+v", msgs[0])
	}
	if msgs[1].Role != provider.RoleAssistant || msgs[1].Content != FallbackReply {
		t.Errorf("assistant message = %+v, want fallback", msgs[1])
	}
}

func TestSubmit_UsesActiveConversation(t *testing.T) {
	p := &fakeProvider{reply: "reply"}
	d, store, _ := newTestDispatcher(t, p)

	first, _ := store.NewConversation()
	second, _ := store.NewConversation()
	store.SetActive(first.ID)

	if err := d.Submit(context.Background(), "Hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n := len(store.Messages(first.ID)); n != 2 {
		t.Errorf("active conversation has %d messages, want 2", n)
	}
	if n := len(store.Messages(second.ID)); n != 0 {
		t.Errorf("inactive conversation has %d messages, want 0", n)
	}
}

func TestSubmit_BusyGuard(t *testing.T) {
	p := &fakeProvider{reply: "slow reply", block: make(chan struct{})}
	d, store, _ := newTestDispatcher(t, p)

	done := make(chan error, 1)
	go func() { done <- d.Submit(context.Background(), "first") }()

	waitUntil(t, d.Busy)

	if err := d.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("Submit while busy = %v, want ErrBusy", err)
	}

	close(p.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if d.Busy() {
		t.Error("dispatcher still busy after turn completed")
	}

	// Only the first submission reached the transcript.
	msgs := store.Messages(store.ActiveID())
	if len(msgs) != 2 || msgs[0].Content != "first" {
		t.Errorf("transcript = %+v, want [first, slow reply]", msgs)
	}
}

func TestSubmit_TimeoutFallsBack(t *testing.T) {
	p := &fakeProvider{reply: "never", block: make(chan struct{})}
	mem := storage.NewMemStorage()
	store := NewStore(mem)
	d := NewDispatcher(store, p, "", 20*time.Millisecond, zerolog.Nop())

	if err := d.Submit(context.Background(), "Hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	msgs := store.Messages(store.ActiveID())
	if len(msgs) != 2 || msgs[1].Content != FallbackReply {
		t.Errorf("transcript = %+v, want fallback after timeout", msgs)
	}
}

func TestNewDispatcher_DefaultsModel(t *testing.T) {
	p := &fakeProvider{}
	d, _, _ := newTestDispatcher(t, p)
	if d.Model() != "fake-model" {
		t.Errorf("Model = %q, want provider default", d.Model())
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
