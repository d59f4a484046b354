package network

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Turns arrive at conversational pace. Anything faster is a
// misbehaving client.
const (
	turnRateLimit = rate.Limit(2) // messages per second
	turnRateBurst = 5
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the client domain is fixed
	},
}

// ClientMessage is the envelope for everything a client sends.
type ClientMessage struct {
	Type        string                   `json:"type"`
	SessionID   string                   `json:"session_id,omitempty"`
	Mission     *mission.Mission         `json:"mission,omitempty"`
	Score       int                      `json:"score,omitempty"`
	Flags       []string                 `json:"flags,omitempty"`
	Traits      map[string]int           `json:"traits,omitempty"`
	GateResults map[mission.GateKey]bool `json:"gate_results,omitempty"`
}

// ServerMessage is the envelope for everything the server sends back.
type ServerMessage struct {
	Type       string                  `json:"type"`
	SessionID  string                  `json:"session_id,omitempty"`
	State      *mission.State          `json:"state,omitempty"`
	Rewards    rules.RewardPermissions `json:"rewards,omitempty"`
	Hints      []string                `json:"hints,omitempty"`
	Conditions []string                `json:"conditions,omitempty"`
	Reply      string                  `json:"reply,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Client is one websocket connection. All of its turns run on the read
// pump goroutine, so a single session driven by one client is never
// processed concurrently.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// ServeWS upgrades an HTTP request to a websocket client.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("websocket upgrade failed: " + err.Error())
		return
	}

	client := &Client{
		id:      uuid.NewString(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 64),
		limiter: rate.NewLimiter(turnRateLimit, turnRateBurst),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error: " + err.Error())
				metrics.Get().RecordWSError()
			}
			return
		}
		metrics.Get().RecordWSMessage(true)

		if !c.limiter.Allow() {
			c.sendError("", "rate limit exceeded, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("", "malformed message: "+err.Error())
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	ctx := context.Background()

	switch msg.Type {
	case "start_mission":
		if msg.Mission == nil {
			c.sendError("", "start_mission requires a mission")
			return
		}
		m := *msg.Mission
		if m.MaxMessages == 0 {
			m.MaxMessages = c.hub.DefaultMaxMessages
		}
		s := c.hub.engine.StartSession(m)
		c.hub.persist(ctx, s.ID, true)
		state := s.State
		c.sendMessage(ServerMessage{
			Type:       "session_started",
			SessionID:  s.ID,
			State:      &state,
			Conditions: c.hub.engine.AdvisoryConditions(s.ID),
		})

	case "process_turn":
		state, err := c.hub.engine.ProcessTurn(ctx, msg.SessionID, mission.TurnSignals{
			Score:       msg.Score,
			Flags:       msg.Flags,
			Traits:      msg.Traits,
			GateResults: msg.GateResults,
		})
		if err != nil {
			c.sendError(msg.SessionID, err.Error())
			return
		}
		c.hub.persist(ctx, msg.SessionID, true)

		rewards, _ := c.hub.engine.RewardPermissions(msg.SessionID)
		adj, _ := c.hub.engine.ModifierHints(ctx, msg.SessionID, 50, 50)
		c.sendMessage(ServerMessage{
			Type:       "turn_result",
			SessionID:  msg.SessionID,
			State:      &state,
			Rewards:    rewards,
			Hints:      adj.Hints,
			Conditions: c.hub.engine.AdvisoryConditions(msg.SessionID),
			Reply:      c.hub.personaReply(ctx, msg.SessionID, state, rewards, adj.Hints),
		})

	case "get_rewards":
		rewards, err := c.hub.engine.RewardPermissions(msg.SessionID)
		if err != nil {
			c.sendError(msg.SessionID, err.Error())
			return
		}
		c.sendMessage(ServerMessage{
			Type:      "reward_permissions",
			SessionID: msg.SessionID,
			Rewards:   rewards,
		})

	case "end_session":
		c.hub.persist(ctx, msg.SessionID, false)
		c.hub.engine.EndSession(msg.SessionID)
		c.sendMessage(ServerMessage{
			Type:      "session_ended",
			SessionID: msg.SessionID,
		})

	default:
		c.sendError(msg.SessionID, "unknown message type: "+msg.Type)
	}
}

func (c *Client) sendMessage(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to marshal server message: " + err.Error())
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
		// Slow consumer, drop the message rather than block the pipeline.
		metrics.Get().RecordWSError()
	}
}

func (c *Client) sendError(sessionID, detail string) {
	c.sendMessage(ServerMessage{Type: "error", SessionID: sessionID, Error: detail})
}
