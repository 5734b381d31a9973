package services

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"cookNestAPI/internal/types/cookalong"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// CookAlongSession is one live kitchen: the host walks a recipe's method
// step by step and everyone in the room sees chat and step changes. State is
// in-memory only; a session dies with its last connection.
type CookAlongSession struct {
	ID          string
	RecipeID    string
	HostID      string
	CurrentStep int
	Manager     *CookAlongManager
	Cooks       map[*CookAlongClient]bool
	Broadcast   chan []byte
	Register    chan *CookAlongClient
	Unregister  chan *CookAlongClient
	RosterPing  chan bool

	// Mirrors len(Cooks). Only Run() touches the map, but ListSessions
	// reads the count from other goroutines, so it goes through an atomic.
	cookCount atomic.Int64
}

func NewCookAlongSession(id, recipeID, hostID string, manager *CookAlongManager) *CookAlongSession {
	return &CookAlongSession{
		ID:         id,
		RecipeID:   recipeID,
		HostID:     hostID,
		Manager:    manager,
		Cooks:      make(map[*CookAlongClient]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *CookAlongClient),
		Unregister: make(chan *CookAlongClient),
		RosterPing: make(chan bool),
	}
}

type cookInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
}

// sendRosterToAll pushes the current cook list to every connection. Only
// called from Run(), so reading s.Cooks needs no lock.
func (s *CookAlongSession) sendRosterToAll() {
	cooks := []cookInfo{}
	for client := range s.Cooks {
		if client.Username != "" {
			cooks = append(cooks, cookInfo{
				ID:       client.UserID,
				Username: client.Username,
				IsHost:   client.UserID == s.HostID,
			})
		}
	}

	data, err := json.Marshal(cookalong.Envelope{Type: cookalong.EventCooks, Payload: cooks})
	if err != nil {
		log.Println("Error marshalling cook roster:", err)
		return
	}

	for client := range s.Cooks {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(s.Cooks, client)
			s.cookCount.Add(-1)
		}
	}
}

// announceSessionEnd tells the remaining cooks the host has left the
// kitchen. The session keeps running so they can finish chatting; it still
// tears down when the last connection drops.
func (s *CookAlongSession) announceSessionEnd() {
	data, err := json.Marshal(cookalong.Envelope{Type: cookalong.EventSessionEnd})
	if err != nil {
		log.Println("Error marshalling session end:", err)
		return
	}

	for client := range s.Cooks {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(s.Cooks, client)
			s.cookCount.Add(-1)
		}
	}
}

func (s *CookAlongSession) Run() {
	defer func() {
		close(s.Broadcast)
		close(s.Register)
		close(s.Unregister)
		close(s.RosterPing)
	}()

	for {
		select {
		case client := <-s.Register:
			s.Cooks[client] = true
			s.cookCount.Add(1)
			log.Printf("[CookAlong %s] Cook connected. Count: %d", s.ID, len(s.Cooks))

		case <-s.RosterPing:
			s.sendRosterToAll()

		case client := <-s.Unregister:
			if _, ok := s.Cooks[client]; ok {
				delete(s.Cooks, client)
				s.cookCount.Add(-1)
				close(client.Send)

				if len(s.Cooks) == 0 {
					log.Printf("[CookAlong %s] Empty, destroying.", s.ID)
					s.Manager.DeleteSession(s.ID)
					return
				}
				if client.UserID == s.HostID {
					s.announceSessionEnd()
				}
				s.sendRosterToAll()
			}

		case message := <-s.Broadcast:
			for client := range s.Cooks {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(s.Cooks, client)
					s.cookCount.Add(-1)
				}
			}
		}
	}
}

// CookAlongManager holds every live session.
type CookAlongManager struct {
	sessions map[string]*CookAlongSession
	mu       sync.RWMutex
}

func NewCookAlongManager() *CookAlongManager {
	return &CookAlongManager{
		sessions: make(map[string]*CookAlongSession),
	}
}

func (m *CookAlongManager) CreateSession(sessionID, recipeID, hostID string) *CookAlongSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s
	}

	s := NewCookAlongSession(sessionID, recipeID, hostID, m)
	m.sessions[sessionID] = s
	go s.Run()
	return s
}

func (m *CookAlongManager) GetSession(sessionID string) (*CookAlongSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *CookAlongManager) DeleteSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

type PublicCookAlong struct {
	SessionID string `json:"sessionId"`
	RecipeID  string `json:"recipeId"`
	HostID    string `json:"host"`
	Cooks     int    `json:"cooks"`
}

func (m *CookAlongManager) ListSessions() []PublicCookAlong {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Empty slice so the JSON is [] rather than null.
	out := make([]PublicCookAlong, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, PublicCookAlong{
			SessionID: s.ID,
			RecipeID:  s.RecipeID,
			HostID:    s.HostID,
			Cooks:     int(s.cookCount.Load()),
		})
	}
	return out
}

// CookAlongClient sits between one websocket connection and the session hub.
type CookAlongClient struct {
	Session  *CookAlongSession
	Conn     *websocket.Conn
	Send     chan []byte
	UserID   string
	Username string
}

type wsPayload struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Content  string `json:"content"`
	Step     int    `json:"step"`
}

func (c *CookAlongClient) ReadPump() {
	defer func() {
		c.Session.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var payload wsPayload
		if err := json.Unmarshal(message, &payload); err != nil {
			continue
		}

		switch payload.Type {
		case "join":
			c.Username = payload.Username
			c.UserID = payload.UserID
			c.Session.Broadcast <- message
			c.Session.RosterPing <- true

		case cookalong.EventStep:
			// Only the host drives the recipe forward.
			if c.UserID != c.Session.HostID {
				continue
			}
			c.Session.CurrentStep = payload.Step
			out, _ := json.Marshal(cookalong.Envelope{
				Type:    cookalong.EventStep,
				Sender:  c.Username,
				Payload: payload.Step,
			})
			c.Session.Broadcast <- out

		case cookalong.EventChat:
			out, _ := json.Marshal(cookalong.Envelope{
				Type:    cookalong.EventChat,
				Sender:  c.Username,
				Payload: payload.Content,
			})
			c.Session.Broadcast <- out
		}
	}
}

// WritePump handles messages going to the client, plus the keepalive pings.
func (c *CookAlongClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The session closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
