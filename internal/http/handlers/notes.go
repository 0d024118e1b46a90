package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type NotesService interface {
	List(ctx context.Context, p user.Principal, taskID string) ([]note.Populated, error)
	Add(ctx context.Context, p user.Principal, taskID string, req note.CreateNoteRequest) (note.Populated, error)
	Delete(ctx context.Context, p user.Principal, id string) error
}

type NotesHandler struct {
	notes NotesService
}

func NewNotesHandler(notes NotesService) *NotesHandler {
	return &NotesHandler{notes: notes}
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	notes, err := h.notes.List(cctx, p, ctx.Param("taskId"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	count := len(notes)
	RespondJSONWithETag(ctx, http.StatusOK, Envelope{
		Status: statusSuccess,
		Count:  &count,
		Data:   gin.H{"notes": notes},
	})
}

func (h *NotesHandler) AddNote(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req note.CreateNoteRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := h.notes.Add(cctx, p, ctx.Param("taskId"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Note added successfully", gin.H{"note": n})
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := h.notes.Delete(cctx, p, ctx.Param("id")); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Note deleted successfully", gin.H{})
}
