package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/service"
)

// StandingsStreamHandler pushes judged-submission events over a websocket so
// contest scoreboards can refresh without polling.
type StandingsStreamHandler struct {
	events service.JudgedEventService
	logger zerolog.Logger
}

// NewStandingsStreamHandler constructs the live standings stream handler.
func NewStandingsStreamHandler(events service.JudgedEventService, logger zerolog.Logger) *StandingsStreamHandler {
	return &StandingsStreamHandler{
		events: events,
		logger: logger.With().Str("component", "standings_stream_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *StandingsStreamHandler) Register(router fiber.Router) {
	router.Use("/:id/standings/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/:id/standings/live", websocket.New(h.handleConnection))
}

func (h *StandingsStreamHandler) handleConnection(conn *websocket.Conn) {
	contestID := strings.TrimSpace(conn.Params("id"))
	if contestID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "contest id required"))
		_ = conn.Close()
		return
	}

	events, cancel := h.events.Subscribe(contestID)
	defer cancel()

	h.logger.Info().Str("contest_id", contestID).Msg("standings stream connected")
	defer h.logger.Info().Str("contest_id", contestID).Msg("standings stream disconnected")

	// The reader goroutine notices the peer going away; events keep flowing
	// until then.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
