// Package server exposes the honeypot over HTTP: the authenticated chat
// endpoint driving the detection and reply pipeline, a health probe and a
// per-session debug view. Failures inside the pipeline degrade to a
// generic in-persona reply so the scammer-facing surface never reveals an
// internal error.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/decoynet/honeytrap/pkg/agent"
	"github.com/decoynet/honeytrap/pkg/config"
	"github.com/decoynet/honeytrap/pkg/detector"
	"github.com/decoynet/honeytrap/pkg/intel"
	"github.com/decoynet/honeytrap/pkg/report"
	"github.com/decoynet/honeytrap/pkg/session"
)

// degradedReply keeps the persona intact when the pipeline fails.
const degradedReply = "I'm having trouble understanding. Could you repeat that?"

// Server wires the HTTP surface to the pipeline components.
type Server struct {
	cfg        *config.Config
	registry   *session.Registry
	detector   *detector.Detector
	agent      *agent.Agent
	dispatcher *report.Dispatcher
	limiter    *RateLimiter
	app        *fiber.App
}

// New builds the server and its routes.
func New(cfg *config.Config, registry *session.Registry, det *detector.Detector,
	ag *agent.Agent, dispatcher *report.Dispatcher) *Server {

	s := &Server{
		cfg:        cfg,
		registry:   registry,
		detector:   det,
		agent:      ag,
		dispatcher: dispatcher,
		limiter:    NewRateLimiter(cfg.RedisAddr, cfg.RateLimitPerMinute),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
	})
	app.Use(recoverer.New())

	// Health stays unauthenticated for load balancer probes.
	app.Get("/health", s.handleHealth)

	app.Use(s.requireAPIKey)
	app.Use(s.rateLimit)
	app.Post("/", s.handleChat)
	app.Post("/chat", s.handleChat)
	app.Get("/session/:id", s.handleSessionDebug)

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the configured address.
func (s *Server) Listen() error {
	log.Printf("[Server] listening on %s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// errorHandler converts explicit fiber errors into JSON and degrades
// everything else (panics included) to the in-persona reply with a 200.
func (s *Server) errorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"status": "error", "error": fe.Message})
	}
	log.Printf("[Server] pipeline failure, degrading reply: %v", err)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "error", "reply": degradedReply})
}

func (s *Server) requireAPIKey(c fiber.Ctx) error {
	if c.Get("x-api-key") != s.cfg.APIKey {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": "error", "error": "invalid or missing api key",
		})
	}
	return c.Next()
}

func (s *Server) rateLimit(c fiber.Ctx) error {
	if !s.limiter.Allow(c.Context(), c.IP()) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"status": "error", "error": "rate limit exceeded",
		})
	}
	return c.Next()
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "version": config.Version})
}

// inboundMessage is one message in the request, current or historical.
// Timestamp accepts epoch milliseconds or RFC 3339.
type inboundMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp any    `json:"timestamp"`
}

type chatRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             inboundMessage   `json:"message"`
	ConversationHistory []inboundMessage `json:"conversationHistory"`
	Metadata            struct {
		Channel  string `json:"channel"`
		Language string `json:"language"`
		Locale   string `json:"locale"`
	} `json:"metadata"`
}

func (s *Server) handleChat(c fiber.Ctx) error {
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "error": "invalid JSON body",
		})
	}
	if req.SessionID == "" || req.Message.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "error": "sessionId and message.text are required",
		})
	}

	sess := s.registry.GetOrCreate(req.SessionID)
	sess.BeginTurn()
	defer sess.EndTurn()

	// History is only accepted on the very first turn; afterwards the
	// session transcript is the sole record and later history is ignored.
	if sess.TurnCount() == 0 && len(req.ConversationHistory) > 0 && !sess.HistorySeeded() {
		sess.SeedHistory(historyTurns(req.ConversationHistory))
	}
	if lang := metadataLanguage(req.Metadata.Language); lang != session.LanguageUnset {
		sess.LockLanguage(lang)
	}

	ctx := c.Context()
	verdict := s.detector.Analyze(ctx, sess, req.Message.Text)
	reply := s.agent.Reply(ctx, sess, req.Message.Text)

	// Heavy extraction only once the engagement turned hostile, and only
	// ever over scammer-authored text.
	if sess.Stage() >= session.StageThreat {
		heavy := intel.ExtractHeavy(req.Message.Text, "scammer", verdict.TurnCount)
		sess.MergeIntel(heavy.Intel, heavy.Items)
	}

	if s.dispatcher != nil && s.dispatcher.Enabled() && sess.MissionReady() {
		sess.MarkMissionComplete()
		if sess.TryArmCallback() {
			log.Printf("[Server] [%s] mission complete, dispatching report", sess.ID)
			s.dispatcher.DispatchAsync(sess)
		}
	}

	return c.JSON(fiber.Map{
		"status":       "success",
		"reply":        reply,
		"scamDetected": verdict.ScamDetected,
	})
}

func (s *Server) handleSessionDebug(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": "error", "error": "session not found",
		})
	}
	return c.JSON(sess.TakeSnapshot())
}

// historyTurns converts seeded history into transcript entries.
func historyTurns(history []inboundMessage) []session.ConversationTurn {
	turns := make([]session.ConversationTurn, 0, len(history))
	for _, m := range history {
		who := session.SpeakerAgent
		if m.Sender == "scammer" {
			who = session.SpeakerScammer
		}
		turns = append(turns, session.ConversationTurn{
			Who:       who,
			Text:      m.Text,
			Timestamp: parseTimestamp(m.Timestamp),
		})
	}
	return turns
}

// metadataLanguage maps the request metadata language onto the session
// language lock.
func metadataLanguage(lang string) session.Language {
	switch lang {
	case "hindi", "hi":
		return session.LanguageHindi
	case "english", "en":
		return session.LanguageEnglish
	default:
		return session.LanguageUnset
	}
}

func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t > 1e12 {
			return time.UnixMilli(int64(t))
		}
		if t > 0 {
			return time.Unix(int64(t), 0)
		}
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}
