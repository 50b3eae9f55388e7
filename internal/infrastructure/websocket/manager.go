package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"alima/internal/infrastructure/metrics"
	"alima/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one websocket connection. It owns the live subscriptions opened
// through it; all of them are stopped when the client unregisters.
type Client struct {
	UserID string
	conn   Conn
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	subs   map[string]Stopper
	unread UnreadWatcher
}

func NewClient(userID string, conn Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]Stopper),
	}
}

// Send queues a frame. It never blocks; a full buffer drops the frame,
// which is safe because every snapshot frame carries the full result set.
func (c *Client) Send(frame Frame) bool {
	if frame.Timestamp == "" {
		frame.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s frame: %v", frame.Type, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		logger.Warn("WebSocket: send buffer full for %s, dropping %s frame", c.UserID, frame.Type)
		return false
	}
}

func (c *Client) setSubscription(key string, s Stopper) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return s
	}
	old := c.subs[key]
	c.subs[key] = s
	if u, ok := s.(UnreadWatcher); ok {
		c.unread = u
	}
	return old
}

func (c *Client) removeSubscription(key string) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.subs[key]
	delete(c.subs, key)
	if key == TopicUnread {
		c.unread = nil
	}
	return s
}

func (c *Client) unreadWatcher() UnreadWatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Subscriptions returns the keys of the open subscriptions.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	return keys
}

// teardown stops every subscription and closes the send queue. Safe to call
// more than once.
func (c *Client) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[string]Stopper)
	c.unread = nil
	c.mu.Unlock()

	c.cancel()
	for _, s := range subs {
		s.Stop()
	}
	close(c.send)
}

// Manager tracks connected clients per user.
type Manager struct {
	feeds   FeedService
	clients map[string]map[*Client]struct{}
	mutex   sync.RWMutex
}

func NewManager(feeds FeedService) *Manager {
	return &Manager{
		feeds:   feeds,
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	if m.clients[client.UserID] == nil {
		m.clients[client.UserID] = make(map[*Client]struct{})
	}
	m.clients[client.UserID][client] = struct{}{}
	m.mutex.Unlock()

	metrics.IncWSActive()
	logger.Info("WebSocket: client registered for %s", client.UserID)
}

// Unregister removes the client and tears down all of its subscriptions.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	conns, ok := m.clients[client.UserID]
	if ok {
		if _, found := conns[client]; !found {
			ok = false
		}
		delete(conns, client)
		if len(conns) == 0 {
			delete(m.clients, client.UserID)
		}
	}
	m.mutex.Unlock()

	client.teardown()
	if ok {
		metrics.DecWSActive()
		logger.Info("WebSocket: client unregistered for %s", client.UserID)
	}
}

// SendToUser delivers a frame to every connection of the user.
func (m *Manager) SendToUser(userID string, frame Frame) {
	m.mutex.RLock()
	targets := make([]*Client, 0, len(m.clients[userID]))
	for c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mutex.RUnlock()

	for _, c := range targets {
		c.Send(frame)
	}
}

// Broadcast delivers a frame to every connected client.
func (m *Manager) Broadcast(frame Frame) {
	m.mutex.RLock()
	var targets []*Client
	for _, conns := range m.clients {
		for c := range conns {
			targets = append(targets, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range targets {
		c.Send(frame)
	}
}

func (m *Manager) ConnectedUsers() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Shutdown unregisters every client.
func (m *Manager) Shutdown() {
	m.mutex.RLock()
	var all []*Client
	for _, conns := range m.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range all {
		m.Unregister(c)
		c.conn.Close()
	}
}

// ReadPump reads frames until the connection fails, then unregisters the
// client.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for %s: %v", c.UserID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
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
				logger.Warn("WebSocket: write error for %s: %v", c.UserID, err)
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
