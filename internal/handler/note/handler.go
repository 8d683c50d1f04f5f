package note

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ledger/internal/handler"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/service/note"
)

type Handler struct {
	svc    *note.Service
	events handler.EventEmitter
}

func NewHandler(svc *note.Service, events handler.EventEmitter) *Handler {
	return &Handler{svc: svc, events: events}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/notes", h.CreateNote)
	r.GET("/patients/:id/notes", h.ListNotes)

	notes := r.Group("/notes")
	{
		notes.PUT("/:noteId", h.UpdateNote)
		notes.DELETE("/:noteId", h.DeleteNote)
	}
}

func (h *Handler) CreateNote(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.NoteRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	n, err := h.svc.Create(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventNoteCreated, n)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(n))
}

func (h *Handler) ListNotes(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.svc.List(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if notes == nil {
		notes = []*model.TreatmentNote{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(notes))
}

func (h *Handler) UpdateNote(c *gin.Context) {
	id, ok := handler.IDParam(c, "noteId")
	if !ok {
		return
	}

	var req model.NoteRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	n, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventNoteUpdated, n)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(n))
}

func (h *Handler) DeleteNote(c *gin.Context) {
	id, ok := handler.IDParam(c, "noteId")
	if !ok {
		return
	}

	n, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventNoteDeleted, n)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(n))
}
