package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/service"
	"github.com/algorank/algorank-api/internal/utils"
)

// ContestHandler serves contest listings and standings.
type ContestHandler struct {
	service service.ContestService
	logger  zerolog.Logger
}

// NewContestHandler constructs a contest handler.
func NewContestHandler(service service.ContestService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service: service,
		logger:  logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register wires contest routes.
func (h *ContestHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id/standings", h.standings)
}

func (h *ContestHandler) list(c *fiber.Ctx) error {
	contests, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list contests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list contests")
	}

	return utils.SendSuccess(c, "contests retrieved", contests)
}

func (h *ContestHandler) standings(c *fiber.Ctx) error {
	standings, err := h.service.Standings(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "contest not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load standings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load standings")
	}

	return utils.SendSuccess(c, "standings retrieved", standings)
}
