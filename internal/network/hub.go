// Package network is the websocket transport in front of the engine.
// It serializes each session's turns; the engine assumes that.
package network

import (
	"context"
	"sync"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/engine"
	"github.com/sofos1231/socialos-server/internal/infra/ai"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
)

// SessionPersister saves session snapshots after state changes. Wired
// to SQLite in main; nil disables persistence.
type SessionPersister interface {
	SaveSession(ctx context.Context, s *engine.Session, active bool) error
}

// Hub maintains the set of connected clients and routes their messages
// to the engine.
type Hub struct {
	engine    *engine.Engine
	persister SessionPersister
	logger    *logger.Logger

	// Responder generates in-character persona replies when set. Nil
	// leaves reply generation to the caller.
	Responder ai.LLMProvider

	// DefaultMaxMessages fills in missions that arrive without a
	// configured message limit. Zero keeps them unlimited.
	DefaultMaxMessages int

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a hub around the engine. persister may be nil.
func NewHub(eng *engine.Engine, persister SessionPersister, log *logger.Logger) *Hub {
	return &Hub{
		engine:     eng,
		persister:  persister,
		logger:     log,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client lifecycle events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("client connected: " + client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(-1)
			h.logger.Info("client disconnected: " + client.id)
		}
	}
}

// personaReply asks the responder for an in-character message built
// from the current snapshot. Failures degrade to an empty reply; the
// turn result is already complete without it.
func (h *Hub) personaReply(ctx context.Context, sessionID string, state mission.State, rewards rules.RewardPermissions, hints []string) string {
	if h.Responder == nil {
		return ""
	}
	s, ok := h.engine.GetSession(sessionID)
	if !ok {
		return ""
	}

	prompt := ai.BuildPersonaPrompt(ai.PromptInput{
		Mission:            &s.Mission,
		State:              state,
		Hints:              hints,
		AdvisoryConditions: h.engine.AdvisoryConditions(sessionID),
		Rewards:            rewards,
	})
	resp, err := h.Responder.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: "Reply to the player's last message."},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})
	if err != nil {
		h.logger.Warn("persona reply failed: " + err.Error())
		return ""
	}
	return resp.Content
}

func (h *Hub) persist(ctx context.Context, sessionID string, active bool) {
	if h.persister == nil {
		return
	}
	s, ok := h.engine.GetSession(sessionID)
	if !ok {
		return
	}
	if err := h.persister.SaveSession(ctx, s, active); err != nil {
		h.logger.Error("failed to persist session " + sessionID + ": " + err.Error())
	}
}
