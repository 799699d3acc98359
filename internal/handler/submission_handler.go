package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/service"
	"github.com/algorank/algorank-api/internal/utils"
)

// SubmissionHandler handles submission judging and lookup.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs a submission handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires submission routes. submitLimit guards only the judging
// endpoint; lookups stay cheap and unthrottled.
func (h *SubmissionHandler) Register(router fiber.Router, submitLimit fiber.Handler) {
	if submitLimit != nil {
		router.Post("", submitLimit, h.submit)
	} else {
		router.Post("", h.submit)
	}
	router.Get("/:id", h.get)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		logger := requestLogger(h.logger, c)
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrProblemNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "problem not found")
		case errors.Is(err, service.ErrUnsupportedLanguage):
			return utils.SendError(c, fiber.StatusBadRequest, "unsupported language")
		case errors.Is(err, service.ErrTestCasesNotFound):
			logger.Error().Err(err).Msg("problem has no test case directory")
			return utils.SendError(c, fiber.StatusNotFound, "test cases not found")
		case errors.Is(err, service.ErrEmptyTestSet):
			logger.Error().Err(err).Msg("problem test set is empty")
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "problem has no test cases")
		case errors.Is(err, service.ErrExecutionTimeout):
			logger.Warn().Err(err).Msg("judging timed out")
			return utils.SendError(c, fiber.StatusGatewayTimeout, "judging did not finish in time, retry with the same submission id")
		case errors.Is(err, service.ErrExecutionBackend):
			logger.Error().Err(err).Msg("execution backend failure")
			return utils.SendError(c, fiber.StatusBadGateway, "execution backend unavailable")
		default:
			logger.Error().Err(err).Msg("failed to judge submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to judge submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission judged", response)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission found", response)
}
