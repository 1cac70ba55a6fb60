package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/auth"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/service"
)

type userService interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type AuthHandler struct {
	users     userService
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(users userService, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type signUpRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
}

func (r signUpRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if r.Birthdate != "" {
		if _, err := time.Parse("2006-01-02", r.Birthdate); err != nil {
			errs = append(errs, FieldError{Field: "birthdate", Message: "must be YYYY-MM-DD"})
		}
	}
	return errs
}

type userDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

type authResponse struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
	User         userDTO `json:"user"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var birthdate *time.Time
	if req.Birthdate != "" {
		parsed, _ := time.Parse("2006-01-02", req.Birthdate)
		birthdate = &parsed
	}

	user, refreshToken, err := h.users.SignUp(r.Context(), service.SignUpRequest{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Birthdate: birthdate,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to sign up user", "error", err)
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusCreated, authResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         toUserDTO(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	user, refreshToken, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, authResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         toUserDTO(user),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		logging.FromContext(r.Context()).Error("failed to log out user", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
