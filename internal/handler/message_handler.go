package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"micebot/internal/bot"
	"micebot/internal/model"

	"github.com/rs/zerolog"
)

const maxMessageBytes = 64 << 10

// Dispatcher handles a single chat message.
type Dispatcher interface {
	Handle(ctx context.Context, msg bot.Message) (*bot.Response, error)
}

// MessageHandler handles chat messages forwarded by the chat gateway.
type MessageHandler struct {
	dispatcher Dispatcher
	logger     zerolog.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(dispatcher Dispatcher, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		dispatcher: dispatcher,
		logger:     logger.With().Str("handler", "message").Logger(),
	}
}

// Handle handles POST /api/messages requests.
func (h *MessageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeInvalidInput, "method not allowed", h.logger)
		return
	}

	var msg bot.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&msg); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := model.Validate(msg); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error(), h.logger)
		return
	}

	resp, err := h.dispatcher.Handle(r.Context(), msg)
	if err != nil {
		status := http.StatusInternalServerError
		code := model.ErrCodeInternalError
		message := "failed to handle message"

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			code = domainErr.Code
			if errors.Is(err, model.ErrAuthContractViolation) {
				status = http.StatusBadGateway
				message = domainErr.Message
			}
		}

		h.logger.Error().Err(err).Str("message_id", msg.MessageID).Msg("message handling failed")
		writeError(w, r, status, code, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
