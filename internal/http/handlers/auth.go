package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/docblog/internal/auth"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (auth.Session, error)
	Authenticate(ctx context.Context, login, password string) (auth.Session, error)
}

type AuthHandler struct {
	svc  Authenticator
	prom *observability.Prom
	log  *slog.Logger
}

func NewAuthHandler(svc Authenticator, prom *observability.Prom, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{svc: svc, prom: prom, log: log}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,trimmed_min=1,max=120"`
	Username string `json:"username" binding:"required,trimmed_min=1,max=80"`
	Email    string `json:"email" binding:"required,email,max=255"`
	// bcrypt ignores bytes past 72
	Password string `json:"password" binding:"required,max=72"`
	Role     string `json:"role" binding:"required,oneof=doctor patient"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sessionResponse is the {user, token} payload of register and login.
type sessionResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	role, _ := user.ParseRole(req.Role)

	session, err := h.svc.Register(cctx, auth.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailTaken):
			h.prom.ObserveAuth("register", "rejected")
			RespondError(ctx, http.StatusBadRequest, "user_exists", "User already exists", gin.H{"reason": err.Error()})
		case errors.Is(err, auth.ErrInvalidRole):
			h.prom.ObserveAuth("register", "rejected")
			RespondBadRequest(ctx, "Validation failed", gin.H{"role": err.Error()})
		default:
			h.prom.ObserveAuth("register", "error")
			h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
			RespondInternal(ctx, "Registration failed")
		}
		return
	}

	h.prom.ObserveAuth("register", "ok")
	RespondOK(ctx, http.StatusCreated, "User registered successfully", sessionResponse{
		User:  session.User,
		Token: session.Token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	session, err := h.svc.Authenticate(cctx, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.prom.ObserveAuth("login", "rejected")
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
			return
		}

		h.prom.ObserveAuth("login", "error")
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Login failed")
		return
	}

	h.prom.ObserveAuth("login", "ok")
	RespondOK(ctx, http.StatusOK, "Login successful", sessionResponse{
		User:  session.User,
		Token: session.Token,
	})
}
