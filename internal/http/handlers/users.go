package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type UsersService interface {
	List(ctx context.Context, p user.Principal, q service.ListUsersQuery) (service.UserList, error)
	Get(ctx context.Context, p user.Principal, id string) (user.User, error)
	Update(ctx context.Context, p user.Principal, id string, req user.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, p user.Principal, id string) error
}

type UsersHandler struct {
	users UsersService
}

func NewUsersHandler(users UsersService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := h.users.List(cctx, p, service.ListUsersQuery{
		Role:  ctx.Query("role"),
		Page:  parseIntDefault(ctx.Query("page"), service.DefaultPage),
		Limit: parseIntDefault(ctx.Query("limit"), service.DefaultLimit),
	})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, successList(
		gin.H{"users": list.Users},
		ListMeta{Count: list.Count, Total: list.Total, Page: list.Page, Pages: list.Pages},
	))
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.users.Get(cctx, p, ctx.Param("id"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, success("", gin.H{"user": u}))
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req user.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.users.Update(cctx, p, ctx.Param("id"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "User updated successfully", gin.H{"user": u})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := h.users.Delete(cctx, p, ctx.Param("id")); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "User deleted successfully", gin.H{})
}
