// Package chat owns the conversation set: creating, switching, deleting and
// appending to conversations, and keeping the persisted blob in sync with
// memory after every mutation.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/atharv2823/BaatCheet/internal/provider"
	"github.com/atharv2823/BaatCheet/internal/storage"
)

// StorageKey is the single blob key holding the entire conversation set.
const StorageKey = "baatcheet-chats"

// ErrNoConversation is returned when an operation names a conversation id
// that is not in the store. Appending to an unknown id is a programming
// contract violation, not a user-facing failure mode.
var ErrNoConversation = errors.New("conversation not found")

// Conversation is one chat thread. Messages only ever grow, in strict
// append order: each user message is followed by its assistant reply.
type Conversation struct {
	ID       string             `json:"id"`
	Messages []provider.Message `json:"messages"`
}

// storeBlob is the persisted form of the conversation set: the ordered id
// sequence plus a mapping from id to message list.
type storeBlob struct {
	Order []string                      `json:"order"`
	Chats map[string][]provider.Message `json:"chats"`
}

// Store holds all conversations in creation order and tracks the active one.
// Every mutation writes through to the injected Storage; memory and blob
// never diverge. Safe for use from the UI goroutine and the single in-flight
// turn goroutine.
type Store struct {
	mu       sync.Mutex
	storage  storage.Storage
	order    []*Conversation
	index    map[string]*Conversation
	activeID string
	lastID   int64
}

// NewStore creates a Store over the given Storage and loads any persisted
// history. Missing or corrupt data is treated as an empty history; the
// caller never sees an error from loading. When history exists, the most
// recently created conversation becomes active.
func NewStore(st storage.Storage) *Store {
	s := &Store{
		storage: st,
		index:   make(map[string]*Conversation),
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil || !ok {
		return
	}
	var blob storeBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return
	}
	for _, id := range blob.Order {
		msgs, ok := blob.Chats[id]
		if !ok {
			continue
		}
		conv := &Conversation{ID: id, Messages: msgs}
		s.order = append(s.order, conv)
		s.index[id] = conv
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	// Resume the most recently created conversation.
	if len(s.order) > 0 {
		s.activeID = s.order[len(s.order)-1].ID
	}
}

// persist serializes the full conversation set and overwrites the stored
// blob. Callers hold s.mu.
func (s *Store) persist() error {
	blob := storeBlob{
		Order: make([]string, 0, len(s.order)),
		Chats: make(map[string][]provider.Message, len(s.order)),
	}
	for _, conv := range s.order {
		blob.Order = append(blob.Order, conv.ID)
		blob.Chats[conv.ID] = conv.Messages
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal chats: %w", err)
	}
	if err := s.storage.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("persist chats: %w", err)
	}
	return nil
}

// nextID returns a fresh conversation id: the current millisecond epoch,
// bumped past the last issued id so rapid creation can never collide while
// ids stay numerically ordered and parseable back into a timestamp.
func (s *Store) nextID() string {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// NewConversation creates an empty conversation, appends it to the ordered
// set, marks it active, and persists.
func (s *Store) NewConversation() (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := &Conversation{ID: s.nextID()}
	s.order = append(s.order, conv)
	s.index[conv.ID] = conv
	s.activeID = conv.ID
	return snapshot(conv), s.persist()
}

// snapshot copies a conversation so readers never share message slices with
// the turn goroutine appending to the live one. Callers hold s.mu.
func snapshot(conv *Conversation) *Conversation {
	msgs := make([]provider.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	return &Conversation{ID: conv.ID, Messages: msgs}
}

// SetActive switches the active conversation. Unknown ids are a silent no-op.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		s.activeID = id
	}
}

// Active returns a snapshot of the active conversation, or nil when none
// is active.
func (s *Store) Active() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil
	}
	return snapshot(s.index[s.activeID])
}

// ActiveID returns the active conversation id, or "" when none is active.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// AppendMessage appends a message to the named conversation and persists.
// Returns ErrNoConversation for an unknown id.
func (s *Store) AppendMessage(id string, msg provider.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.index[id]
	if !ok {
		return fmt.Errorf("append to %s: %w", id, ErrNoConversation)
	}
	conv.Messages = append(conv.Messages, msg)
	return s.persist()
}

// Delete removes the conversation from the set and persists. Deleting the
// active conversation clears the active reference; deleting an unknown id
// is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return nil
	}
	delete(s.index, id)
	for i, conv := range s.order {
		if conv.ID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
	}
	return s.persist()
}

// Conversations returns snapshots of the conversations in creation
// (insertion) order.
func (s *Store) Conversations() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Conversation, len(s.order))
	for i, conv := range s.order {
		out[i] = snapshot(conv)
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Messages returns a copy of the named conversation's message list, so the
// UI can render while a turn mutates the conversation. Unknown ids yield nil.
func (s *Store) Messages(id string) []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.index[id]
	if !ok {
		return nil
	}
	out := make([]provider.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out
}
