package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"polygon/internal/memory"
	"polygon/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// subscriber is one websocket connection listening to a session.
type subscriber struct {
	send chan types.Event
}

// offer queues ev without blocking. It reports false if the buffer is full.
func (s *subscriber) offer(ev types.Event) bool {
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

// Hub fans game events out to the websocket connections of each session.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a new listener for sessionID with initial queued
// ahead of any published event.
func (h *Hub) Subscribe(sessionID string, initial ...types.Event) *subscriber {
	sub := &subscriber{send: make(chan types.Event, sendBufferSize)}
	for _, ev := range lo.Slice(initial, 0, sendBufferSize) {
		sub.send <- ev
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[sessionID]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.subscribers[sessionID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sessionID, sub)
}

func (h *Hub) removeLocked(sessionID string, sub *subscriber) {
	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.subscribers, sessionID)
	}
}

// Drop disconnects every listener of sessionID.
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range lo.Keys(h.subscribers[sessionID]) {
		h.removeLocked(sessionID, sub)
	}
}

// Publish sends ev to every listener of sessionID. Listeners that cannot keep
// up are disconnected.
func (h *Hub) Publish(sessionID string, ev types.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers[sessionID] {
		if !sub.offer(ev) {
			logWarn("Dropping slow websocket subscriber for session %s", sessionID)
			h.removeLocked(sessionID, sub)
		}
	}
}

// Count returns the number of listeners of sessionID.
func (h *Hub) Count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[sessionID])
}

// Renderer returns a memory.Renderer that publishes to sessionID.
func (h *Hub) Renderer(sessionID string) memory.Renderer {
	return &sessionRenderer{hub: h, sessionID: sessionID}
}

type sessionRenderer struct {
	hub       *Hub
	sessionID string
}

func (r *sessionRenderer) RenderGrid(size int, cards []memory.Card) {
	r.hub.Publish(r.sessionID, types.Event{Type: EventGrid, Data: gridView(size, cards)})
}

func (r *sessionRenderer) RenderScore(score int) {
	r.hub.Publish(r.sessionID, types.Event{Type: EventScore, Data: score})
}

func (r *sessionRenderer) RenderTimer(clock memory.Clock) {
	r.hub.Publish(r.sessionID, types.Event{Type: EventTimer, Data: clock.String()})
}

func (r *sessionRenderer) RenderSummary(summary memory.Summary) {
	r.hub.Publish(r.sessionID, types.Event{Type: EventSummary, Data: summaryView(summary)})
}

// wsHandler streams the session's game events over a websocket.
func (app *App) wsHandler(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorNoSession})
		return
	}
	sess := app.getSession(c.Request.Context(), sessionID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logWarn("Websocket upgrade failed for session %s: %v", sessionID, err)
		return
	}

	snapshot := types.Event{Type: EventSnapshot, Data: snapshotView(sess.Game.Snapshot())}
	sub := app.Hub.Subscribe(sessionID, snapshot)
	defer app.Hub.Unsubscribe(sessionID, sub)

	go writePump(conn, sub)
	readPump(conn)
	logInfo("Websocket closed for session %s", sessionID)
}

// readPump discards client messages and returns once the connection dies.
func readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logWarn("Websocket read error: %v", err)
			}
			return
		}
	}
}

// writePump writes queued events and keepalive pings until the channel closes.
func writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case ev, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logWarn("Websocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
