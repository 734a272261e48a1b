package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"micronation/internal/platform/middleware"
	"micronation/internal/user"
	httpErrors "micronation/pkg/http-errors"
	"micronation/pkg/requestcontext"
	"micronation/pkg/validation"
)

// UserService defines the identity operations the HTTP layer delegates to.
type UserService interface {
	Register(ctx context.Context, email, password, nickname string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ChangeNickname(ctx context.Context, userID, password, newNickname string) (string, error)
}

// UserHandler handles the account endpoints.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register registers the account routes with the chi router. Password and
// nickname changes require an upstream-established identity.
func (h *UserHandler) Register(r chi.Router) {
	r.Post("/users/register", h.handleRegister)
	r.Post("/users/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(h.logger))
		r.Post("/users/password", h.handleChangePassword)
		r.Post("/users/nickname", h.handleChangeNickname)
	})
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Nickname             string `json:"nickname"`
}

func (req registerRequest) validate() error {
	if err := validation.Email(req.Email); err != nil {
		return err
	}
	if err := validation.Password(req.Password); err != nil {
		return err
	}
	if err := validation.Confirmation(req.Password, req.PasswordConfirmation); err != nil {
		return err
	}
	return validation.Nickname(req.Nickname)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, invalidInput(err))
		return
	}

	if _, err := h.users.Register(ctx, req.Email, req.Password, req.Nickname); err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, successResponse{Success: true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req loginRequest) validate() error {
	if err := validation.Email(req.Email); err != nil {
		return err
	}
	return validation.Password(req.Password)
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, invalidInput(err))
		return
	}

	if _, err := h.users.Login(ctx, req.Email, req.Password); err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type changePasswordRequest struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

func (req changePasswordRequest) validate() error {
	if err := validation.Password(req.CurrentPassword); err != nil {
		return err
	}
	if err := validation.Password(req.NewPassword); err != nil {
		return err
	}
	return validation.Confirmation(req.NewPassword, req.NewPasswordConfirmation)
}

func (h *UserHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, invalidInput(err))
		return
	}

	if err := h.users.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.logger.WarnContext(ctx, "password change rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type changeNicknameRequest struct {
	Password    string `json:"password"`
	NewNickname string `json:"new_nickname"`
}

func (req changeNicknameRequest) validate() error {
	if err := validation.Password(req.Password); err != nil {
		return err
	}
	return validation.Nickname(req.NewNickname)
}

func (h *UserHandler) handleChangeNickname(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req changeNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, invalidInput(err))
		return
	}

	nickname, err := h.users.ChangeNickname(ctx, userID, req.Password, req.NewNickname)
	if err != nil {
		h.logger.WarnContext(ctx, "nickname change rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nicknameResponse{Nickname: nickname})
}

type successResponse struct {
	Success bool `json:"success"`
}

type nicknameResponse struct {
	Nickname string `json:"nickname"`
}

// invalidInput rewraps a field validation failure so all pre-service
// rejections share one body code regardless of which field failed.
func invalidInput(err error) error {
	return httpErrors.New(httpErrors.CodeInvalidInput, err.Error())
}
