package webhook

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/agrisoko/sokobot/core/config"
	"github.com/agrisoko/sokobot/core/logger"
	"github.com/agrisoko/sokobot/core/whatsapp"
)

// Dispatcher routes one inbound text message to its command handler.
type Dispatcher interface {
	HandleMessage(ctx context.Context, fromPhone, text string) error
}

// Server terminates the Cloud API webhook and feeds messages into the
// command router.
type Server struct {
	cfg        config.WhatsAppConfig
	dispatcher Dispatcher
	engine     *gin.Engine
	http       *http.Server
}

func NewServer(cfg *config.Config, dispatcher Dispatcher) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg.WhatsApp,
		dispatcher: dispatcher,
		engine:     engine,
	}

	engine.GET("/health", s.handleHealth)
	engine.GET("/webhook/whatsapp", s.handleVerify)
	engine.POST("/webhook/whatsapp", s.handleDelivery)

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Listen, cfg.HTTP.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	logger.Info(context.Background(), "http", "server.start", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the gin engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleVerify answers the Graph API subscription handshake:
// GET /webhook/whatsapp?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (s *Server) handleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && challenge != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.VerifyToken)) == 1 {
		logger.Info(c.Request.Context(), "http", "webhook.verified")
		c.String(http.StatusOK, "%s", challenge)
		return
	}

	logger.Warn(c.Request.Context(), "http", "webhook.verify.rejected", slog.String("mode", mode))
	c.String(http.StatusForbidden, "forbidden")
}

func (s *Server) handleDelivery(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body")
		return
	}

	if !whatsapp.VerifySignature(s.cfg.AppSecret, raw, c.GetHeader("X-Hub-Signature-256")) {
		logger.Warn(c.Request.Context(), "http", "webhook.signature.rejected")
		c.String(http.StatusForbidden, "forbidden")
		return
	}

	payload, err := whatsapp.ParsePayload(raw)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid json")
		return
	}

	rid := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	ctx := logger.WithRID(c.Request.Context(), rid)

	msgs := whatsapp.ExtractMessages(payload)
	logger.Info(ctx, "http", "webhook.delivery", slog.Int("messages", len(msgs)))

	// Acknowledge fast; message handling errors are logged, never surfaced
	// to Meta (a non-2xx only triggers redelivery of the same payload).
	c.String(http.StatusOK, "EVENT_RECEIVED")

	for _, m := range msgs {
		if err := s.dispatcher.HandleMessage(ctx, m.From, m.Text); err != nil {
			logger.Error(ctx, "http", "webhook.message.fail",
				slog.String("message_id", m.MessageID),
				slog.String("error", err.Error()),
			)
		}
	}
}
