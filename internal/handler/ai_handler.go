package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"swachhsetu/internal/ai"
	"swachhsetu/internal/service"
)

const maxImageBytes = 10 << 20

// AIHandler proxies the AI service.
type AIHandler struct {
	ai service.AIService
}

// NewAIHandler creates an AI handler.
func NewAIHandler(svc service.AIService) *AIHandler {
	return &AIHandler{ai: svc}
}

// AIResponse wraps an AI service result.
type AIResponse struct {
	Success  bool            `json:"success"`
	Fallback bool            `json:"fallback,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// LinguisticRequest is a transcript to analyze.
type LinguisticRequest struct {
	Transcript string `json:"transcript" validate:"required,max=10000"`
	Language   string `json:"language" validate:"max=16"`
}

// ChatRequest is one chatbot turn.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	SessionID string `json:"sessionId" validate:"max=128"`
}

func aiUnavailable(c echo.Context, err error, op string) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("operation", op).Msg("ai service call failed")
	return c.JSON(http.StatusInternalServerError, AIResponse{Error: "AI service unavailable"})
}

// Forensic godoc
// @Summary Forensic analysis of a report image
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image"
// @Success 200 {object} AIResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} AIResponse
// @Router /ai/forensic/analyze [post]
func (h *AIHandler) Forensic(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest("image", "is required")
	}
	if file.Size > maxImageBytes {
		return badRequest("image", "must be at most 10MB")
	}
	src, err := file.Open()
	if err != nil {
		return badRequest("image", "could not be read")
	}
	defer src.Close()

	result, err := h.ai.Forensic(c.Request().Context(), actor.UserID, ai.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Body:        src,
	})
	if err != nil {
		return aiUnavailable(c, err, "forensic")
	}
	return c.JSON(http.StatusOK, AIResponse{Success: true, Result: result})
}

// Linguistic godoc
// @Summary Linguistic analysis of a spoken report
// @Description Answers with fallback=true and the transcript echoed back when the AI service fails or times out.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LinguisticRequest true "Transcript"
// @Success 200 {object} AIResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /ai/linguistic/analyze [post]
func (h *AIHandler) Linguistic(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req LinguisticRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.ai.Linguistic(c.Request().Context(), actor.UserID, req.Transcript, req.Language)
	if err != nil {
		return aiUnavailable(c, err, "linguistic")
	}
	return c.JSON(http.StatusOK, AIResponse{Success: true, Fallback: res.Fallback, Result: res.Result})
}

// ChatGreeting godoc
// @Summary Chatbot greeting
// @Tags ai
// @Produce json
// @Success 200 {object} AIResponse
// @Failure 500 {object} AIResponse
// @Router /ai/chatbot/greeting [get]
func (h *AIHandler) ChatGreeting(c echo.Context) error {
	result, err := h.ai.ChatGreeting(c.Request().Context())
	if err != nil {
		return aiUnavailable(c, err, "greeting")
	}
	return c.JSON(http.StatusOK, AIResponse{Success: true, Result: result})
}

// Chat godoc
// @Summary Send a chatbot message
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "Message"
// @Success 200 {object} AIResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} AIResponse
// @Router /ai/chatbot/chat [post]
func (h *AIHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.ai.Chat(c.Request().Context(), req.Message, req.SessionID)
	if err != nil {
		return aiUnavailable(c, err, "chat")
	}
	return c.JSON(http.StatusOK, AIResponse{Success: true, Result: result})
}
