package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/atharv2823/BaatCheet/internal/provider"
)

// FallbackReply is appended as the assistant turn when the provider call
// fails, so every accepted user message gets exactly one reply. The raw
// error goes to the log, never to the transcript.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// ErrBusy is returned when a submission arrives while a turn is in flight.
var ErrBusy = errors.New("a turn is already in flight")

// Dispatcher runs one conversation turn at a time: append the user message
// to the active conversation, call the provider, append the reply (or the
// fallback), and leave the store persisted. At most one turn is in flight;
// a second Submit is a hard no-op returning ErrBusy.
type Dispatcher struct {
	store    *Store
	provider provider.Provider
	model    string
	timeout  time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	busy bool
}

func NewDispatcher(store *Store, p provider.Provider, model string, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if model == "" {
		model = p.DefaultModel()
	}
	return &Dispatcher{
		store:    store,
		provider: p,
		model:    model,
		timeout:  timeout,
		log:      log,
	}
}

// Busy reports whether a turn is currently in flight.
func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Model returns the model identifier used for provider calls.
func (d *Dispatcher) Model() string { return d.model }

// Submit runs one full turn for the given utterance.
//
// Empty or whitespace-only input is ignored: no conversation is touched, no
// call is made, and nil is returned. When no conversation is active, one is
// created before the user message is appended. The provider call runs under
// the configured timeout; on any failure the fixed fallback text becomes the
// assistant message and the error is logged. Either way the transcript gains
// exactly one user and one assistant message and the store is persisted.
func (d *Dispatcher) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	conv := d.store.Active()
	if conv == nil {
		var err error
		conv, err = d.store.NewConversation()
		if err != nil {
			// The conversation exists in memory; a persist failure here
			// will be retried by the write after the provider call.
			d.log.Error().Err(err).Msg("persist new conversation")
		}
	}

	if err := d.appendMessage(conv.ID, provider.Message{Role: provider.RoleUser, Content: text}); err != nil {
		return err
	}

	reply, err := d.generate(ctx, conv.ID)
	if err != nil {
		d.log.Error().Err(err).Str("chat", conv.ID).Str("model", d.model).Msg("turn failed")
		reply = FallbackReply
	}

	return d.appendMessage(conv.ID, provider.Message{Role: provider.RoleAssistant, Content: reply})
}

func (d *Dispatcher) generate(ctx context.Context, convID string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.provider.Generate(ctx, &provider.Request{
		Model:    d.model,
		Messages: d.store.Messages(convID),
	})
}

// appendMessage writes through to storage. A missing conversation is an
// internal defect and is surfaced; a storage write failure is logged and
// absorbed so the session stays interactive.
func (d *Dispatcher) appendMessage(id string, msg provider.Message) error {
	err := d.store.AppendMessage(id, msg)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoConversation) {
		return err
	}
	d.log.Error().Err(err).Str("chat", id).Msg("persist message")
	return nil
}
