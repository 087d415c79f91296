package chat

import (
	"context"
	"sync"
	"time"
)

const (
	defaultHistorySize = 50

	staleSessionAge = time.Hour
	cleanupInterval = 10 * time.Minute
)

// SessionHistory keeps a per-session sliding window of conversation turns.
// Thread-safe for concurrent access.
type SessionHistory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionData
	maxSize  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type sessionData struct {
	messages   []Message
	lastAccess time.Time
}

// NewSessionHistory creates a session history keeping at most maxSize messages
// per session (default 50).
func NewSessionHistory(maxSize int) *SessionHistory {
	if maxSize <= 0 {
		maxSize = defaultHistorySize
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &SessionHistory{
		sessions: make(map[string]*sessionData),
		maxSize:  maxSize,
		ctx:      ctx,
		cancel:   cancel,
	}
	h.wg.Add(1)
	go h.cleanupLoop()
	return h
}

// Close stops the cleanup goroutine.
func (h *SessionHistory) Close() {
	h.cancel()
	h.wg.Wait()
}

// Messages returns up to limit of the most recent messages of a session.
// Reading refreshes the session's last-access time.
func (h *SessionHistory) Messages(sessionID string, limit int) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok || len(session.messages) == 0 {
		return []Message{}
	}
	session.lastAccess = time.Now()

	messages := session.messages
	if limit > 0 && limit < len(messages) {
		messages = messages[len(messages)-limit:]
	}
	result := make([]Message, len(messages))
	copy(result, messages)
	return result
}

// Append adds a message to a session, evicting the oldest entries beyond the
// window.
func (h *SessionHistory) Append(sessionID string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		session = &sessionData{messages: make([]Message, 0, h.maxSize)}
		h.sessions[sessionID] = session
	}

	session.messages = append(session.messages, msg)
	session.lastAccess = time.Now()
	if len(session.messages) > h.maxSize {
		session.messages = session.messages[len(session.messages)-h.maxSize:]
	}
}

// ClearSession removes all messages of a session.
func (h *SessionHistory) ClearSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}

// SessionCount returns the number of active sessions.
func (h *SessionHistory) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *SessionHistory) cleanupLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			now := time.Now()
			for id, session := range h.sessions {
				if now.Sub(session.lastAccess) > staleSessionAge {
					delete(h.sessions, id)
				}
			}
			h.mu.Unlock()
		}
	}
}
