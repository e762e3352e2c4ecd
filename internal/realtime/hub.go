// Package realtime streams workspace terminal and state events to
// websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stackslab/ide/internal/domain/workspace"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	sendBuffer    = 256
)

// Message types sent to clients besides the workspace event types.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// Inbound message types.
const (
	CommandClearTerminal = "clear_terminal"
	CommandAddOutput     = "add_output"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type    string                    `json:"type"`
	Action  string                    `json:"action,omitempty"`
	Entry   *workspace.TerminalEntry  `json:"entry,omitempty"`
	Entries []workspace.TerminalEntry `json:"entries,omitempty"`

	// Inbound add_output fields.
	OutputType workspace.OutputType `json:"output_type,omitempty"`
	Text       string               `json:"text,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Hub fans store events out to the websocket clients of each tenant.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	cancels map[string]func()
}

type client struct {
	ctx    context.Context
	hub    *Hub
	tenant string
	store  *workspace.Store
	conn   *websocket.Conn
	send   chan []byte
}

// NewHub creates a hub. checkOrigin may be nil to accept any origin.
func NewHub(logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		clients:  make(map[string]map[*client]struct{}),
		cancels:  make(map[string]func()),
	}
}

// Attach subscribes the hub to a store. Attaching the same tenant twice
// replaces the earlier subscription.
func (h *Hub) Attach(s *workspace.Store) {
	cancel := s.Subscribe(h.Broadcast)
	h.mu.Lock()
	if prev, ok := h.cancels[s.TenantID()]; ok {
		prev()
	}
	h.cancels[s.TenantID()] = cancel
	h.mu.Unlock()
}

// Close drops all subscriptions and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tenant, cancel := range h.cancels {
		cancel()
		delete(h.cancels, tenant)
	}
	for tenant, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, tenant)
	}
}

// Broadcast delivers ev to the tenant's clients. Slow clients drop events
// rather than stall the store.
func (h *Hub) Broadcast(ev workspace.Event) {
	data, err := json.Marshal(Message{Type: string(ev.Type), Action: ev.Action, Entry: ev.Entry})
	if err != nil {
		h.logger.Warn("failed to encode event", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.TenantID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping event for slow client", "tenant_id", ev.TenantID)
		}
	}
}

// Clients returns the number of connected clients of a tenant.
func (h *Hub) Clients(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

// Serve upgrades the request and streams the store's events. The terminal
// buffer is sent first as a snapshot, oldest entry first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, s *workspace.Store) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		ctx:    context.WithoutCancel(r.Context()),
		hub:    h,
		tenant: s.TenantID(),
		store:  s,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	set, ok := h.clients[c.tenant]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.tenant] = set
	}
	set[c] = struct{}{}
	c.enqueue(Message{Type: TypeSnapshot, Entries: chronological(s.Terminal())})
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "tenant_id", c.tenant)
	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.tenant]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.tenant)
	}
}

func (c *client) enqueue(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", "error", err)
			}
			return
		}
		c.handle(data)
	}
}

func (c *client) handle(data []byte) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		c.reply(Message{Type: TypeError, Error: "invalid message"})
		return
	}

	var err error
	switch m.Type {
	case CommandClearTerminal:
		err = c.store.ClearTerminal(c.ctx)
	case CommandAddOutput:
		typ := m.OutputType
		if typ == "" {
			typ = workspace.OutputInfo
		}
		err = c.store.AddTerminalOutput(c.ctx, typ, m.Text)
	default:
		err = fmt.Errorf("unknown command %q", m.Type)
	}
	if err != nil {
		c.reply(Message{Type: TypeError, Error: err.Error()})
	}
}

// reply sends m to this client only, if it is still registered.
func (c *client) reply(m Message) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.tenant][c]; ok {
		c.enqueue(m)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func chronological(entries []workspace.TerminalEntry) []workspace.TerminalEntry {
	out := make([]workspace.TerminalEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
