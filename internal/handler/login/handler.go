package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talker-manager/backend/internal/validation"
	"github.com/zhouzirui/talker-manager/backend/pkg/utils"
)

// Handler hands out the service credential to well-formed logins.
type Handler struct {
	token string
}

// New creates a login handler issuing token.
func New(token string) *Handler {
	return &Handler{token: token}
}

// RegisterRoutes registers POST /login.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := validation.ParseLogin(validation.LimitBody(w, r)); err != nil {
		message := "invalid request body"
		if verr, ok := validation.AsError(err); ok {
			message = verr.Message
		}
		utils.RespondError(w, http.StatusBadRequest, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"token": h.token})
}
