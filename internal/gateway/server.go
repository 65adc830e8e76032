// Package gateway implements the WebSocket front door for content
// moderation. Clients connect, receive a session ID, and submit content
// strings; the gateway rate-limits and validates submissions, forwards
// them to the moderator workers over NATS, and pushes the verdict back on
// the same connection.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/whisper/sentinel/internal/messaging"
	"github.com/whisper/sentinel/internal/metrics"
	"github.com/whisper/sentinel/internal/protocol"
	"github.com/whisper/sentinel/internal/ratelimit"
	"github.com/whisper/sentinel/internal/strikes"
)

// Config holds gateway server settings.
type Config struct {
	ListenAddr     string
	MaxConnections int
	WriteTimeout   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		MaxConnections: 10000,
		WriteTimeout:   10 * time.Second,
	}
}

// Server accepts WebSocket connections and shuttles submissions and
// verdicts between clients and the moderator workers.
type Server struct {
	config  Config
	nats    *messaging.Client
	limiter *ratelimit.Limiter
	strikes *strikes.Store

	mu    sync.RWMutex
	conns map[string]*connection

	httpSrv *http.Server
}

// NewServer creates a gateway server. The strikes store may be nil, in
// which case block enforcement is disabled.
func NewServer(config Config, natsClient *messaging.Client, limiter *ratelimit.Limiter, strikeStore *strikes.Store) *Server {
	return &Server{
		config:  config,
		nats:    natsClient,
		limiter: limiter,
		strikes: strikeStore,
		conns:   make(map[string]*connection),
	}
}

// Start begins accepting WebSocket upgrades on /ws. It blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpSrv = &http.Server{Addr: s.config.ListenAddr, Handler: mux}

	log.Printf("[gateway] listening on %s", s.config.ListenAddr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes every active connection.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}

	s.mu.Lock()
	for id, conn := range s.conns {
		conn.close()
		delete(s.conns, id)
	}
	s.mu.Unlock()

	return err
}

// Count returns the number of active connections.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if s.Count() >= s.config.MaxConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	// Per-IP connection rate limit.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if allowed, _ := s.limiter.Allow(r.Context(), host, ratelimit.RuleConnect); !allowed {
		http.Error(w, "connection rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	netConn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Printf("[gateway] upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	go s.serveConn(netConn)
}

// serveConn owns one client connection: it establishes the session, wires
// the NATS result subscription, and runs the read loop until the client
// goes away.
func (s *Server) serveConn(netConn net.Conn) {
	sessionID := uuid.New().String()
	conn := newConnection(sessionID, netConn)

	s.mu.Lock()
	s.conns[sessionID] = conn
	s.mu.Unlock()
	metrics.ConnectionsActive.Inc()

	defer func() {
		if err := s.nats.UnsubscribeResult(sessionID); err != nil {
			log.Printf("[gateway] unsubscribe results session=%s: %v", sessionID, err)
		}
		s.mu.Lock()
		delete(s.conns, sessionID)
		s.mu.Unlock()
		conn.close()
		metrics.ConnectionsActive.Dec()
		log.Printf("[gateway] session %s closed", sessionID)
	}()

	if err := s.nats.SubscribeResult(sessionID, func(data []byte) {
		s.handleResult(conn, data)
	}); err != nil {
		log.Printf("[gateway] subscribe results session=%s: %v", sessionID, err)
		return
	}

	if msg, err := protocol.NewServerMessage(protocol.TypeSessionCreated, protocol.SessionCreatedMsg{
		SessionID: sessionID,
	}); err == nil {
		conn.write(msg, s.config.WriteTimeout)
	}

	log.Printf("[gateway] session %s connected", sessionID)

	for {
		data, _, err := wsutil.ReadClientData(netConn)
		if err != nil {
			return
		}
		s.handleClientMessage(conn, data)
	}
}

func (s *Server) handleClientMessage(conn *connection, data []byte) {
	msgType, msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		s.sendError(conn, "bad_message", err.Error())
		return
	}

	switch msgType {
	case protocol.TypeSubmit:
		s.handleSubmit(conn, msg.(protocol.SubmitMsg))
	case protocol.TypePing:
		if out, err := protocol.NewServerMessage(protocol.TypePong, protocol.PongMsg{}); err == nil {
			conn.write(out, s.config.WriteTimeout)
		}
	}
}

func (s *Server) handleSubmit(conn *connection, msg protocol.SubmitMsg) {
	ctx := context.Background()

	if err := ValidateContent(msg.Content); err != nil {
		s.sendError(conn, "invalid_content", err.Error())
		return
	}

	if s.strikes != nil {
		blocked, remaining, reason, err := s.strikes.IsBlocked(ctx, conn.id)
		if err != nil {
			// Fail open on Redis errors, same policy as the rate limiter.
			log.Printf("[gateway] strike check session=%s: %v (failing open)", conn.id, err)
		} else if blocked {
			if out, err := protocol.NewServerMessage(protocol.TypeBlocked, protocol.BlockedMsg{
				Duration: remaining,
				Reason:   reason,
			}); err == nil {
				conn.write(out, s.config.WriteTimeout)
			}
			return
		}
	}

	if allowed, _ := s.limiter.Allow(ctx, conn.id, ratelimit.RuleSubmit); !allowed {
		if out, err := protocol.NewServerMessage(protocol.TypeRateLimited, protocol.RateLimitedMsg{
			RetryAfter: s.limiter.RetryAfter(ctx, conn.id, ratelimit.RuleSubmit),
		}); err == nil {
			conn.write(out, s.config.WriteTimeout)
		}
		return
	}

	req := messaging.CheckRequest{
		SessionID:    conn.id,
		SubmissionID: uuid.New().String(),
		Content:      msg.Content,
		Ts:           time.Now().UnixMilli(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		s.sendError(conn, "internal", "failed to encode submission")
		return
	}

	conn.trackSubmission(req.SubmissionID)
	if err := s.nats.PublishCheck(data); err != nil {
		conn.completeSubmission(req.SubmissionID)
		log.Printf("[gateway] publish check session=%s: %v", conn.id, err)
		s.sendError(conn, "unavailable", "moderation service unavailable")
		return
	}
}

// handleResult delivers a moderator verdict (or classification error) to
// the client.
func (s *Server) handleResult(conn *connection, data []byte) {
	var result messaging.CheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("[gateway] unmarshal result session=%s: %v", conn.id, err)
		return
	}

	if elapsed, ok := conn.completeSubmission(result.SubmissionID); ok {
		metrics.VerdictRoundTrip.Observe(elapsed.Seconds())
	}

	if result.Error != "" {
		s.sendError(conn, "classification_failed", result.Error)
		return
	}

	out, err := protocol.NewServerMessage(protocol.TypeVerdict, protocol.VerdictMsg{
		SubmissionID: result.SubmissionID,
		Severity:     result.Severity,
		Action:       result.Action,
		Explanation:  result.Explanation,
		Metadata:     result.Metadata,
	})
	if err != nil {
		log.Printf("[gateway] encode verdict session=%s: %v", conn.id, err)
		return
	}
	if err := conn.write(out, s.config.WriteTimeout); err != nil {
		log.Printf("[gateway] write verdict session=%s: %v", conn.id, err)
	}
}

func (s *Server) sendError(conn *connection, code, message string) {
	out, err := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
		Code:    code,
		Message: message,
	})
	if err != nil {
		return
	}
	conn.write(out, s.config.WriteTimeout)
}
