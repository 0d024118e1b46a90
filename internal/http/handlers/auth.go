package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req user.RegisterRequest) (service.Session, error)
	Login(ctx context.Context, req user.LoginRequest) (service.Session, error)
	Me(ctx context.Context, p user.Principal) (user.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	session, err := h.auth.Register(cctx, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "User registered successfully", session)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	session, err := h.auth.Login(cctx, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.auth.Me(cctx, p)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "", gin.H{"user": u})
}
