// Package ws provides the live note autosave channel over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ShotaHirabayashi/coachcanvas/internal/autosave"
	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
	"github.com/ShotaHirabayashi/coachcanvas/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 256 * 1024
	maxNoteLength  = 50000
	saveTimeout    = 10 * time.Second
)

// Frame types.
const (
	TypeAutosave = "autosave"
	TypeSave     = "save"
	TypeSaved    = "saved"
	TypeError    = "error"
)

// InboundMessage is a frame sent by the editor.
type InboundMessage struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	TemplateID string `json:"template_id,omitempty"`
}

// OutboundMessage is a frame sent to the editor.
type OutboundMessage struct {
	Type  string       `json:"type"`
	Mode  string       `json:"mode,omitempty"`
	Note  *domain.Note `json:"note,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Server handles live autosave connections.
type Server struct {
	service   *service.Service
	debouncer *autosave.Debouncer
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewServer creates a Server that debounces autosave frames by delay.
func NewServer(svc *service.Service, delay time.Duration, logger zerolog.Logger) *Server {
	return &Server{
		service:   svc,
		debouncer: autosave.New(delay),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the live autosave route.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/sessions/:id/note/live", s.HandleLive)
}

// Close writes every pending autosave and stops accepting new ones.
func (s *Server) Close() {
	s.debouncer.FlushAll()
	s.debouncer.Stop()
}

type connection struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue hands a frame to the write pump. Frames for a closed connection
// are dropped.
func (c *connection) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	}
}

// HandleLive upgrades the request after checking that the session exists.
// GET /v1/sessions/:id/note/live
func (s *Server) HandleLive(c echo.Context) error {
	sessionID := c.Param("id")
	if _, err := s.service.GetSession(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to upgrade websocket")
		return nil
	}
	ws.SetReadLimit(maxMessageSize)

	conn := &connection{
		conn:      ws,
		sessionID: sessionID,
		send:      make(chan []byte, 16),
		done:      make(chan struct{}),
	}
	s.logger.Debug().Str("session_id", sessionID).Msg("live note connected")

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

func (s *Server) readPump(conn *connection) {
	defer func() {
		// The last edit of a closing editor is written right away.
		s.debouncer.Flush(conn.sessionID)
		conn.close()
		s.logger.Debug().Str("session_id", conn.sessionID).Msg("live note disconnected")
	}()

	conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn().Err(err).Str("session_id", conn.sessionID).Msg("websocket read failed")
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.close()
	}()

	for {
		select {
		case message := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn().Err(err).Str("session_id", conn.sessionID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-conn.done:
			return
		}
	}
}

func (s *Server) handleMessage(conn *connection, data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "invalid JSON message")
		return
	}
	if utf8.RuneCountInString(msg.Content) > maxNoteLength {
		s.sendError(conn, "content must be at most 50000 characters")
		return
	}

	switch msg.Type {
	case TypeAutosave:
		s.handleAutosave(conn, msg)
	case TypeSave:
		s.handleSave(conn, msg)
	default:
		s.sendError(conn, "unknown message type: "+msg.Type)
	}
}

// handleAutosave supersedes any autosave still pending for the session.
func (s *Server) handleAutosave(conn *connection, msg InboundMessage) {
	content := msg.Content
	queued := s.debouncer.Queue(conn.sessionID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		note, err := s.service.AutosaveNote(ctx, conn.sessionID, content)
		if err != nil {
			s.replyError(conn, err)
			return
		}
		s.send(conn, OutboundMessage{Type: TypeSaved, Mode: TypeAutosave, Note: note})
	})
	if !queued {
		s.sendError(conn, "server is shutting down")
	}
}

// handleSave drops any pending autosave and saves explicitly.
func (s *Server) handleSave(conn *connection, msg InboundMessage) {
	s.debouncer.Cancel(conn.sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	note, err := s.service.SaveNote(ctx, conn.sessionID, msg.Content, msg.TemplateID)
	if err != nil {
		s.replyError(conn, err)
		return
	}
	s.send(conn, OutboundMessage{Type: TypeSaved, Mode: TypeSave, Note: note})
}

func (s *Server) replyError(conn *connection, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		s.sendError(conn, validationErr.Error())
	case errors.As(err, &notFoundErr):
		s.sendError(conn, notFoundErr.Error())
	default:
		s.logger.Error().Err(err).Str("session_id", conn.sessionID).Msg("live note save failed")
		s.sendError(conn, "failed to save note")
	}
}

func (s *Server) sendError(conn *connection, message string) {
	s.send(conn, OutboundMessage{Type: TypeError, Error: message})
}

func (s *Server) send(conn *connection, msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode frame")
		return
	}
	conn.enqueue(data)
}
