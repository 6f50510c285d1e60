package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	enginex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/engine"
)

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Server is the transport boundary: it delivers (session_id, message) to the
// engine and returns the reply. Nothing conversational lives here.
type Server struct {
	cfg    Config
	engine contractx.ChatEngine
	http   *http.Server
}

func New(cfg Config, engine contractx.ChatEngine) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	s := &Server{cfg: cfg, engine: engine}
	router.POST("/chat", s.handleChat)
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}
	return s
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and message are required"})
		return
	}

	reply, err := s.engine.HandleMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, enginex.ErrInvalidSession), errors.Is(err, enginex.ErrInvalidMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
