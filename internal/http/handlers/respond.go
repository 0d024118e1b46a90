package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status    string              `json:"status"`
	Code      string              `json:"code,omitempty"`
	Message   string              `json:"message,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
	Errors    []apperr.FieldError `json:"errors,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
	Count     *int                `json:"count,omitempty"`
	Total     *int                `json:"total,omitempty"`
	Page      *int                `json:"page,omitempty"`
	Pages     *int                `json:"pages,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ListMeta carries the paging fields of list responses.
type ListMeta struct {
	Count, Total, Page, Pages int
}

func success(message string, data interface{}) Envelope {
	return Envelope{Status: statusSuccess, Message: message, Data: data}
}

func successList(data interface{}, meta ListMeta) Envelope {
	return Envelope{
		Status: statusSuccess,
		Data:   data,
		Count:  &meta.Count,
		Total:  &meta.Total,
		Page:   &meta.Page,
		Pages:  &meta.Pages,
	}
}

func RespondSuccess(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, success(message, data))
}

func RespondError(ctx *gin.Context, status int, code, message string, fields []apperr.FieldError) {
	ctx.AbortWithStatusJSON(status, Envelope{
		Status:    statusError,
		Code:      code,
		Message:   message,
		RequestID: middlewares.RequestIDFrom(ctx),
		Errors:    fields,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, fields []apperr.FieldError) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, fields)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondErr renders any service error. Internal errors are logged with the
// request id and shown to the client with their safe message only.
func RespondErr(ctx *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("Server Error", err)
	}

	status := statusFor(e.Kind)
	if status == http.StatusInternalServerError {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", middlewares.RequestIDFrom(ctx),
		)
	}

	RespondError(ctx, status, e.Code, e.Message, e.Fields)
}
