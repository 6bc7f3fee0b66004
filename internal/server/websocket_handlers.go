package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketDecodeRequest is a message received over a decode WebSocket.
// "frames" appends emission rows to the session buffer, "flush" decodes the
// buffered rows and clears them, "decode" runs a one-shot decode of the
// frames in the message itself.
type WebSocketDecodeRequest struct {
	Type      string      `json:"type"` // "frames", "flush" or "decode"
	Frames    [][]float64 `json:"frames,omitempty"`
	Method    string      `json:"method,omitempty"`
	BeamWidth int         `json:"beam_width,omitempty"`
	Top       int         `json:"top,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketDecodeResponse is a message sent over a decode WebSocket.
type WebSocketDecodeResponse struct {
	Type      string        `json:"type"`
	Status    string        `json:"status"` // "buffered", "completed", "error"
	Buffered  int           `json:"buffered,omitempty"`
	Result    *DecodeResult `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// decodeWebSocketHandler handles WebSocket connections for streaming decode.
func (s *Server) decodeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// Increment active connections metric
	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
// Each connection keeps its own frame buffer, so one emitter can stream
// frames across many messages and flush when the sequence ends.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	var buffer [][]float64

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			buffer = s.handleWebSocketMessage(conn, data, buffer)
		}
	}
}

// handleWebSocketMessage processes one WebSocket message and returns the
// updated frame buffer.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte, buffer [][]float64) [][]float64 {
	var req WebSocketDecodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return buffer
	}

	switch req.Type {
	case "frames":
		buffer = append(buffer, req.Frames...)
		s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
			Type:     "decode_response",
			Status:   "buffered",
			Buffered: len(buffer),
		})
		return buffer

	case "flush":
		req.Frames = buffer
		s.processWebSocketDecode(conn, req)
		return nil

	case "decode":
		s.processWebSocketDecode(conn, req)
		return buffer

	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
		return buffer
	}
}

// processWebSocketDecode runs a decode for the frames in req.
func (s *Server) processWebSocketDecode(conn *websocket.Conn, req WebSocketDecodeRequest) {
	// Generate a request ID for tracking
	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	result, err := s.decode(&DecodeRequest{
		Frames:    req.Frames,
		Method:    req.Method,
		BeamWidth: req.BeamWidth,
		Top:       req.Top,
	})
	if err != nil {
		s.sendWebSocketError(conn, "decode_error", err.Error())
		return
	}

	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "decode_response",
		Status:    "completed",
		Result:    result,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDecodeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketDecodeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
