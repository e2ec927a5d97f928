// Package sse streams domain notifications to connected dashboards.
package sse

import (
	"net/http"
	"sync"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventLeadTransitioned  EventType = "lead_transitioned"
	EventLeadsImported     EventType = "leads_imported"
	EventCallbackScheduled EventType = "callback_scheduled"
	EventAgentDeleted      EventType = "agent_deleted"
)

// Event represents an SSE event payload
type Event struct {
	ID      string      `json:"id,omitempty"`
	Type    EventType   `json:"type"`
	LeadID  *uuid.UUID  `json:"leadId,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	userID uuid.UUID
	admin  bool
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	log     *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}
}

// Publish sends an event to every connection of one user.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[userID] {
		s.send(c, event)
	}
}

// PublishToAdmins sends an event to every connected administrator.
func (s *Service) PublishToAdmins(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			if c.admin {
				s.send(c, event)
			}
		}
	}
}

// send never blocks; a slow client loses events. Callers hold s.mu.
func (s *Service) send(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		s.log.Warn("sse buffer full", "userId", c.userID, "event", event.Type)
	}
}

// Connected reports how many streams are open.
func (s *Service) Connected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, clients := range s.clients {
		n += len(clients)
	}
	return n
}

// Handler streams events to the authenticated caller until it disconnects.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		cl := &client{
			userID: identity.UserID(),
			admin:  identity.IsAdmin(),
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": cl.userID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				c.Render(-1, ginsse.Event{Id: event.ID, Event: string(event.Type), Data: event})
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every open stream.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
