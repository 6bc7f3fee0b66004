package server

import (
	"errors"
	"net/http"

	"github.com/MeKo-Tech/ctcbeam/internal/config"
	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies. The decoders are
// built once at startup; they are immutable, so handlers can run them
// concurrently without coordination.
type Server struct {
	alphabet    *ctc.Alphabet
	greedy      *ctc.GreedyDecoder
	cfg         config.DecoderConfig
	corsOrigin  string
	maxBodyMB   int64
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyMB  int64
	Decoder    config.DecoderConfig
	RateLimit  *RateLimitConfig
}

// RateLimitConfig holds the per-client request limits.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// AlphabetResponse is returned by GET /alphabet.
type AlphabetResponse struct {
	Symbols []string `json:"symbols"`
	Size    int      `json:"size"`
	Blank   int      `json:"blank_class"`
}

// DecodeRequest is the JSON body accepted by POST /decode. Frames are
// time-major: one row per timestep, one probability per class with class 0
// being blank.
type DecodeRequest struct {
	Frames    [][]float64 `json:"frames"`
	Method    string      `json:"method,omitempty"`
	BeamWidth int         `json:"beam_width,omitempty"`
	Top       int         `json:"top,omitempty"`
}

// DecodeResult carries one decode outcome.
type DecodeResult struct {
	Text       string           `json:"text"`
	Score      float64          `json:"score"`
	Method     string           `json:"method"`
	BeamWidth  int              `json:"beam_width,omitempty"`
	Timesteps  int              `json:"timesteps"`
	Hypotheses []ctc.Hypothesis `json:"hypotheses,omitempty"`
	DecodeNs   int64            `json:"decode_ns"`
}

// DecodeResponse is the JSON envelope for POST /decode.
type DecodeResponse struct {
	Success bool          `json:"success"`
	Result  *DecodeResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewServer creates a new decode server instance.
func NewServer(cfg Config, alphabet *ctc.Alphabet) (*Server, error) {
	if alphabet == nil {
		return nil, errors.New("server requires an alphabet")
	}
	// Reject a bad default beam width here rather than on first request.
	if _, err := ctc.NewBeamSearchDecoder(alphabet, cfg.Decoder.BeamWidth); err != nil {
		return nil, err
	}

	var limiter *RateLimiter
	if cfg.RateLimit != nil {
		limiter = NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RequestsPerHour)
	}

	return &Server{
		alphabet:    alphabet,
		greedy:      ctc.NewGreedyDecoder(alphabet),
		cfg:         cfg.Decoder,
		corsOrigin:  cfg.CORSOrigin,
		maxBodyMB:   cfg.MaxBodyMB,
		rateLimiter: limiter,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/alphabet", s.corsMiddleware(s.alphabetHandler))
	mux.HandleFunc("/decode", s.corsMiddleware(s.rateLimitMiddleware(s.decodeHandler)))
	mux.HandleFunc("/decode/ws", s.decodeWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
