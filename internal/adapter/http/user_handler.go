package http

import (
	"net/http"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type UserHandler struct {
	service interfaces.UserService
	logger  logger.Logger
}

func NewUserHandler(service interfaces.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if msg, errs := decodeAndValidate(w, r, &req); errs != nil {
		respondError(w, msg, http.StatusBadRequest, errs)
		return
	}

	user, err := h.service.Register(r.Context(), interfaces.RegisterUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "user_registration_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}
