package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

// Scout is the slice of usecase.ChatService the HTTP surface drives.
type Scout interface {
	HandleMessage(ctx context.Context, userID, message string) usecase.Reply
	AggregateProfile(ctx context.Context, identities []player.Identity) (player.PlayerProfile, error)
	ResetSession(ctx context.Context, userID string) error
	SessionStatus(ctx context.Context, userID string) (usecase.SessionStatus, error)
}

type Handler struct {
	scout     Scout
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(scout Scout, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scout:     scout,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMessage answers 200 for every conversational outcome, including no match and
// an out-of-range pick; the outcome is reported in the body.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.HandleMessage")
	defer span.End()

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	reply := h.scout.HandleMessage(ctx, req.UserID, req.Message)
	if errors.Is(reply.Err, usecase.ErrInvalidInput) {
		writeError(ctx, w, reply.Err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, replyToDTO(ctx, reply))
}

func (h *Handler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSessionStatus")
	defer span.End()

	userID := r.PathValue("userID")
	status, err := h.scout.SessionStatus(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get session status failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionStatusToDTO(status))
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetSession")
	defer span.End()

	userID := r.PathValue("userID")
	if err := h.scout.ResetSession(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "reset session failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"user_id": userID, "reset": true})
}

func (h *Handler) AggregateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AggregateProfile")
	defer span.End()

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	identities, err := req.toIdentities()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.scout.AggregateProfile(ctx, identities)
	if err != nil {
		h.logger.WarnContext(ctx, "aggregate profile failed", "identities", len(identities), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}
