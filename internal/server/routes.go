package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Eat42/internal/database"
	"Eat42/internal/metabolic"
)

// historyLimit is how many stored readings feed the metabolic context.
const historyLimit = 12

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)
	e.POST("/chat", s.chatHandler)
	e.POST("/chat/reset", s.resetHandler)

	return e
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("client_ip", realIP(c)).
			Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// realIP prefers proxy headers over the socket address.
func realIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.RealIP()
}

// requestLogger returns the logger stored by LoggerMiddleware.
func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}

/* ====================================================================
                   		Chat Handlers
==================================================================== */

type chatRequest struct {
	Message       string              `json:"message"`
	UserID        string              `json:"user_id"`
	GlucoseLevel  int                 `json:"glucose_level"`
	PregnancyWeek int                 `json:"pregnancy_week"`
	History       []metabolic.Reading `json:"glucose_history"`
}

type resetRequest struct {
	UserID string `json:"user_id"`
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) chatHandler(c echo.Context) error {
	logger := requestLogger(c)

	// 1. Bind and validate
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return errorJSON(c, http.StatusBadRequest, "message is required")
	}
	if req.UserID == "" {
		req.UserID = uuid.New().String()
	}
	c.Response().Header().Set("X-User-ID", req.UserID)

	// 2. Fill in context from the store when the caller did not send it
	if s.store != nil && len(req.History) == 0 {
		if err := s.loadContext(c, &req); err != nil {
			logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to load metabolic context")
			return errorJSON(c, http.StatusInternalServerError, "Failed to load glucose history")
		}
	}

	// 3. Run the turn
	resp := s.chat.ExtractToJSON(req.Message, req.GlucoseLevel, req.History, req.PregnancyWeek, req.UserID)

	logger.Info().
		Str("user_id", req.UserID).
		Bool("complete", resp.Complete).
		Str("missing_field", string(resp.MissingField)).
		Msg("Chat turn handled")

	return c.JSON(http.StatusOK, resp)
}

// loadContext fetches history and, when absent, pregnancy week concurrently.
// An unknown user keeps the request values.
func (s *Server) loadContext(c echo.Context, req *chatRequest) error {
	g, ctx := errgroup.WithContext(c.Request().Context())

	var history []metabolic.Reading
	g.Go(func() error {
		var err error
		history, err = s.store.RecentGlucoseReadings(ctx, req.UserID, historyLimit)
		return err
	})

	week := req.PregnancyWeek
	if week == 0 {
		g.Go(func() error {
			w, err := s.store.PregnancyWeek(ctx, req.UserID)
			if errors.Is(err, database.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			week = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	req.History = history
	req.PregnancyWeek = week
	return nil
}

func (s *Server) resetHandler(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" {
		return errorJSON(c, http.StatusBadRequest, "user_id is required")
	}

	s.chat.ClearPending(req.UserID)
	requestLogger(c).Info().Str("user_id", req.UserID).Msg("Pending conversation cleared")

	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) healthHandler(c echo.Context) error {
	if s.store == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "up", "database": "disabled"})
	}
	return c.JSON(http.StatusOK, s.store.Health())
}
