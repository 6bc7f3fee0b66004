package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/ctcbeam/internal/config"
	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
	"github.com/MeKo-Tech/ctcbeam/internal/version"
)

// healthHandler handles health check requests.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:  "ok",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// alphabetHandler returns the symbol set the server decodes against.
func (s *Server) alphabetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := AlphabetResponse{
		Symbols: s.alphabet.Symbols(),
		Size:    s.alphabet.Size(),
		Blank:   0,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode alphabet response", "error", err)
	}
}

// decodeHandler handles POST /decode requests.
func (s *Server) decodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyMB*1024*1024)

	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := s.decode(&req)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := DecodeResponse{Success: true, Result: result}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode decode response", "error", err)
	}
}

// decode runs one decode request against the configured decoders. It is
// shared by the HTTP and WebSocket handlers.
func (s *Server) decode(req *DecodeRequest) (*DecodeResult, error) {
	method := req.Method
	if method == "" {
		method = s.cfg.Method
	}

	em, err := ctc.EmissionsFromFrames(req.Frames)
	if err != nil {
		decodeRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, err
	}

	result := &DecodeResult{
		Method:    method,
		Timesteps: em.Steps(),
	}

	start := time.Now()
	switch method {
	case config.MethodGreedy:
		text, score, err := s.greedy.Decode(em)
		if err != nil {
			decodeRequestsTotal.WithLabelValues(method, "error").Inc()
			return nil, err
		}
		result.Text = text
		result.Score = score

	case config.MethodBeamSearch:
		width := req.BeamWidth
		if width <= 0 {
			width = s.cfg.BeamWidth
		}
		decoder, err := ctc.NewBeamSearchDecoder(s.alphabet, width)
		if err != nil {
			decodeRequestsTotal.WithLabelValues(method, "error").Inc()
			return nil, err
		}
		text, scores, err := decoder.Decode(em)
		if err != nil {
			decodeRequestsTotal.WithLabelValues(method, "error").Inc()
			return nil, err
		}
		top := req.Top
		if top <= 0 {
			top = s.cfg.Top
		}
		result.Text = text
		result.Score = scores[text]
		result.BeamWidth = width
		result.Hypotheses = ctc.TopHypotheses(scores, top)
		decodeHypotheses.Observe(float64(len(scores)))

	default:
		decodeRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("unknown decode method: %s", method)
	}
	elapsed := time.Since(start)

	result.DecodeNs = elapsed.Nanoseconds()

	decodeRequestsTotal.WithLabelValues(method, "success").Inc()
	decodeDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	decodeTimesteps.Observe(float64(em.Steps()))
	decodeTextLength.Observe(float64(len(result.Text)))

	return result, nil
}

// writeErrorResponse writes a JSON error response.
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := DecodeResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
