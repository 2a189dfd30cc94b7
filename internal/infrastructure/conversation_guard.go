package infrastructure

import (
	"sync"
	"time"
)

// conversationState tracks the in-flight auto-reply for one conversation.
type conversationState struct {
	processing bool
	lastStart  time.Time
	mu         sync.Mutex
}

// ConversationGuard prevents concurrent auto-replies into the same
// conversation: duplicate webhook deliveries and rapid-fire inbound
// messages would otherwise each trigger a completion call.
type ConversationGuard struct {
	states   map[string]*conversationState
	mu       sync.RWMutex
	debounce time.Duration
}

func NewConversationGuard(debounce time.Duration) *ConversationGuard {
	return &ConversationGuard{
		states:   make(map[string]*conversationState),
		debounce: debounce,
	}
}

func (g *ConversationGuard) state(key string) *conversationState {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, exists := g.states[key]
	if !exists {
		st = &conversationState{}
		g.states[key] = st
	}
	return st
}

// TryAcquire marks the conversation as processing. Returns false when a
// reply is already in flight or the last one started within the
// debounce window.
func (g *ConversationGuard) TryAcquire(key string) bool {
	st := g.state(key)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.processing {
		return false
	}
	if time.Since(st.lastStart) < g.debounce {
		return false
	}

	st.processing = true
	st.lastStart = time.Now()
	return true
}

// Release marks the conversation's reply as finished.
func (g *ConversationGuard) Release(key string) {
	st := g.state(key)

	st.mu.Lock()
	st.processing = false
	st.mu.Unlock()
}
