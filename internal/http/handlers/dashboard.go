package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardLoader interface {
	Load(ctx context.Context, p user.Principal, q service.ListTasksQuery) (service.DashboardView, error)
}

type DashboardHandler struct {
	dashboard DashboardLoader
}

func NewDashboardHandler(dashboard DashboardLoader) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Dashboard returns everything a role's dashboard shows on load in one call.
func (h *DashboardHandler) Dashboard(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	view, err := h.dashboard.Load(cctx, p, listQuery(ctx))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	data := gin.H{
		"role": view.Role,
		"tasks": gin.H{
			"tasks": view.Tasks.Tasks,
			"count": view.Tasks.Count,
			"total": view.Tasks.Total,
			"page":  view.Tasks.Page,
			"pages": view.Tasks.Pages,
		},
	}

	if view.Role == user.RoleAdmin {
		data["users"] = view.Users
		data["analytics"] = view.Analytics
	} else {
		data["stats"] = view.Stats
	}

	RespondJSONWithETag(ctx, http.StatusOK, success("", data))
}
